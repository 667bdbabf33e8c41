package riscv_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obelisc/obelisc/riscv"
)

var _ = Describe("Encode", func() {
	It("should produce known instruction words", func() {
		Expect(riscv.ADDI(1, 2, -3)).To(Equal(uint32(0xFFD10093)))
		Expect(riscv.SW(1, 2, 8)).To(Equal(uint32(0x0020A423)))
		Expect(riscv.BEQ(1, 2, -4)).To(Equal(uint32(0xFE208EE3)))
		Expect(riscv.LUI(5, 0x12345000)).To(Equal(uint32(0x123452B7)))
		Expect(riscv.JAL(1, 2048)).To(Equal(uint32(0x001000EF)))
		Expect(riscv.NOP()).To(Equal(uint32(0x00000013)))
		Expect(riscv.ECALL()).To(Equal(uint32(0x00000073)))
		Expect(riscv.EBREAK()).To(Equal(uint32(0x00100073)))
	})

	It("should round-trip every I-type immediate", func() {
		for imm := int32(-2048); imm <= 2047; imm++ {
			word := riscv.ADDI(1, 2, imm)
			Expect(riscv.ImmI(word)).To(Equal(uint32(imm)))
		}
	})

	It("should round-trip every S-type immediate", func() {
		for imm := int32(-2048); imm <= 2047; imm++ {
			word := riscv.SW(1, 2, imm)
			Expect(riscv.ImmS(word)).To(Equal(uint32(imm)))
		}
	})

	It("should round-trip every 13-bit even branch offset", func() {
		for imm := int32(-4096); imm <= 4094; imm += 2 {
			word := riscv.BEQ(3, 4, imm)
			Expect(riscv.ImmB(word)).To(Equal(uint32(imm)))
		}
	})

	It("should round-trip every 21-bit even jump offset", func() {
		for imm := int32(-1048576); imm <= 1048574; imm += 2 {
			word := riscv.JAL(1, imm)
			Expect(riscv.ImmJ(word)).To(Equal(uint32(imm)))
		}
	})

	It("should round-trip U-type immediates", func() {
		for _, imm := range []uint32{0, 0x1000, 0x12345000, 0x80000000, 0xFFFFF000} {
			Expect(riscv.ImmU(riscv.LUI(1, imm))).To(Equal(imm))
			Expect(riscv.ImmU(riscv.AUIPC(1, imm))).To(Equal(imm))
		}
	})

	It("should carry the shift mode in the right immediate bit", func() {
		srli, err := riscv.Decode(riscv.SRLI(1, 2, 7))
		Expect(err).ToNot(HaveOccurred())
		Expect(srli.Funct3).To(Equal(riscv.Funct3SR))
		Expect(riscv.ImmI(riscv.SRLI(1, 2, 7)) & (1 << 10)).To(Equal(uint32(0)))
		Expect(riscv.ImmI(riscv.SRAI(1, 2, 7)) & (1 << 10)).ToNot(Equal(uint32(0)))
	})

	It("should encode CSR numbers in the funct12 field", func() {
		word := riscv.CSRRW(1, 2, 0x340)
		Expect(word >> 20).To(Equal(uint32(0x340)))

		dec, err := riscv.Decode(word)
		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Opcode).To(Equal(riscv.OpcodeSystem))
		Expect(dec.Funct3).To(Equal(riscv.Funct3CSRRW))
	})

	It("should place the zero-extended operand of immediate CSR forms in the rs1 field", func() {
		dec, err := riscv.Decode(riscv.CSRRSI(1, 0x15, 0x340))
		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Funct3).To(Equal(riscv.Funct3CSRRSI))
		Expect(dec.Rs1).To(Equal(uint32(0x15)))
	})
})
