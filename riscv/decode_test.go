package riscv_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obelisc/obelisc/riscv"
)

var _ = Describe("Decode", func() {
	// ADDI x1, x2, -3   -> 0xFFD10093
	// imm12=0xFFD, rs1=2, funct3=0, rd=1, opcode 0010011
	It("should decode ADDI x1, x2, -3", func() {
		dec, err := riscv.Decode(0xFFD10093)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeOpImm))
		Expect(dec.Funct3).To(Equal(uint32(0)))
		Expect(dec.Rd).To(Equal(uint32(1)))
		Expect(dec.Rs1).To(Equal(uint32(2)))
		Expect(riscv.ImmI(0xFFD10093)).To(Equal(uint32(0xFFFFFFFD)))
	})

	// SW x2, 8(x1)      -> 0x0020A423
	// imm[11:5]=0, rs2=2, rs1=1, funct3=2, imm[4:0]=8, opcode 0100011
	It("should decode SW x2, 8(x1)", func() {
		dec, err := riscv.Decode(0x0020A423)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeStore))
		Expect(dec.Funct3).To(Equal(riscv.Funct3SW))
		Expect(dec.Rs1).To(Equal(uint32(1)))
		Expect(dec.Rs2).To(Equal(uint32(2)))
		Expect(riscv.ImmS(0x0020A423)).To(Equal(uint32(8)))
	})

	// BEQ x1, x2, -4    -> 0xFE208EE3
	// imm[12]=1, imm[10:5]=111111, rs2=2, rs1=1, imm[4:1]=1110, imm[11]=1
	It("should decode BEQ x1, x2, -4", func() {
		dec, err := riscv.Decode(0xFE208EE3)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeBranch))
		Expect(dec.Funct3).To(Equal(riscv.Funct3BEQ))
		Expect(dec.Rs1).To(Equal(uint32(1)))
		Expect(dec.Rs2).To(Equal(uint32(2)))
		Expect(riscv.ImmB(0xFE208EE3)).To(Equal(uint32(0xFFFFFFFC)))
	})

	// LUI x5, 0x12345   -> 0x123452B7
	It("should decode LUI x5, 0x12345", func() {
		dec, err := riscv.Decode(0x123452B7)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeLui))
		Expect(dec.Rd).To(Equal(uint32(5)))
		Expect(riscv.ImmU(0x123452B7)).To(Equal(uint32(0x12345000)))
	})

	// JAL x1, +2048     -> 0x001000EF
	// imm[20]=0, imm[10:1]=0, imm[11]=1, imm[19:12]=0, rd=1
	It("should decode JAL x1, +2048", func() {
		dec, err := riscv.Decode(0x001000EF)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeJal))
		Expect(dec.Rd).To(Equal(uint32(1)))
		Expect(riscv.ImmJ(0x001000EF)).To(Equal(uint32(0x800)))
	})

	// AMOADD.W x3, x4, (x5) -> funct7=0, rs2=4, rs1=5, funct3=2, rd=3
	It("should decode AMOADD.W x3, x4, (x5)", func() {
		word := riscv.AMOADDW(3, 5, 4)
		dec, err := riscv.Decode(word)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeAmo))
		Expect(dec.Funct3).To(Equal(riscv.Funct3AmoW))
		Expect(dec.Funct7 >> 2).To(Equal(riscv.Funct5AmoADD))
		Expect(dec.Rd).To(Equal(uint32(3)))
		Expect(dec.Rs1).To(Equal(uint32(5)))
		Expect(dec.Rs2).To(Equal(uint32(4)))
	})

	It("should extract funct7 from R-type instructions", func() {
		// SUB x1, x2, x3: funct7=0100000
		dec, err := riscv.Decode(riscv.SUB(1, 2, 3))

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeOp))
		Expect(dec.Funct7).To(Equal(uint32(0x20)))
	})

	It("should fault on unmapped opcode patterns", func() {
		// bits [6:2] = 11010 is not in the opcode-class table
		_, err := riscv.Decode(0x0000006B)

		Expect(err).To(HaveOccurred())

		// and neither is all-ones
		_, err = riscv.Decode(0xFFFFFFFF)
		Expect(err).To(HaveOccurred())
	})

	It("should decode the all-zero word as a load", func() {
		// An unmapped fetch yields word 0; that is still a recognized
		// class (a byte load), not a decode fault.
		dec, err := riscv.Decode(0)

		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeLoad))
		Expect(dec.Funct3).To(Equal(riscv.Funct3LB))
	})
})

var _ = Describe("RegNames", func() {
	It("maps register indices to their ABI names", func() {
		Expect(riscv.RegNames[0]).To(Equal("zero"))
		Expect(riscv.RegNames[1]).To(Equal("ra"))
		Expect(riscv.RegNames[2]).To(Equal("sp"))
		Expect(riscv.RegNames[10]).To(Equal("a0"))
		Expect(riscv.RegNames[31]).To(Equal("t6"))
	})
})

var _ = Describe("Immediate laws", func() {
	It("should sign-extend the I-type immediate", func() {
		Expect(riscv.ImmI(riscv.ADDI(0, 0, 2047))).To(Equal(uint32(2047)))
		Expect(riscv.ImmI(riscv.ADDI(0, 0, -2048))).To(Equal(uint32(0xFFFFF800)))
		Expect(riscv.ImmI(riscv.ADDI(0, 0, -1))).To(Equal(uint32(0xFFFFFFFF)))
	})

	It("should split the S-type immediate across both field groups", func() {
		Expect(riscv.ImmS(riscv.SW(1, 2, 2047))).To(Equal(uint32(2047)))
		Expect(riscv.ImmS(riscv.SW(1, 2, -2048))).To(Equal(uint32(0xFFFFF800)))
		Expect(riscv.ImmS(riscv.SW(1, 2, 0x5A5))).To(Equal(uint32(0x5A5)))
	})

	It("should keep bit 0 of the B-type immediate clear", func() {
		word := riscv.BEQ(1, 2, 2)
		Expect(riscv.ImmB(word) & 1).To(Equal(uint32(0)))
	})

	It("should zero the low 12 bits of the U-type immediate", func() {
		Expect(riscv.ImmU(riscv.LUI(1, 0xFFFFFFFF))).To(Equal(uint32(0xFFFFF000)))
		Expect(riscv.ImmU(riscv.AUIPC(1, 0x80000000))).To(Equal(uint32(0x80000000)))
	})

	It("should keep bit 0 of the J-type immediate clear", func() {
		word := riscv.JAL(1, 2)
		Expect(riscv.ImmJ(word) & 1).To(Equal(uint32(0)))
	})
})
