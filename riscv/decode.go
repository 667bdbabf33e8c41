// Package riscv holds the stateless ISA-level pieces of the simulator:
// instruction-word field extraction, the immediate reconstruction laws for
// the five RV32 instruction formats, and the inverse encoding helpers used
// to assemble test programs.
package riscv

import "fmt"

// Decoded is the field view of one 32-bit instruction word. All fields are
// derived per fetch and never stored.
type Decoded struct {
	// Opcode is the canonical 7-bit opcode byte of the instruction's class,
	// one of the Opcode* constants.
	Opcode uint32
	Funct3 uint32
	Funct7 uint32
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
}

// Decode classifies an instruction word by its bits [6:2] and extracts the
// secondary fields. An unmapped bit pattern is a fatal decode fault.
func Decode(instr uint32) (Decoded, error) {
	var opcode uint32
	switch (instr >> 2) & 0x1F {
	case 0x00: // 00000: memory loads
		opcode = OpcodeLoad
	case 0x03: // 00011: fence
		opcode = OpcodeMiscMem
	case 0x04: // 00100: ALU with immediate
		opcode = OpcodeOpImm
	case 0x05: // 00101: AUIPC
		opcode = OpcodeAuipc
	case 0x08: // 01000: memory stores
		opcode = OpcodeStore
	case 0x0B: // 01011: atomic memory operations
		opcode = OpcodeAmo
	case 0x0C: // 01100: register-register ALU
		opcode = OpcodeOp
	case 0x0D: // 01101: LUI
		opcode = OpcodeLui
	case 0x18: // 11000: conditional branches
		opcode = OpcodeBranch
	case 0x19: // 11001: JALR
		opcode = OpcodeJalr
	case 0x1B: // 11011: JAL
		opcode = OpcodeJal
	case 0x1C: // 11100: ECALL/EBREAK/CSR
		opcode = OpcodeSystem
	default:
		return Decoded{}, fmt.Errorf("unknown opcode bits %05b in instruction %08x (code %x)",
			(instr>>2)&0x1F, instr, ErrUnknownOpCode)
	}
	return Decoded{
		Opcode: opcode,
		Funct3: (instr >> 12) & 0x7,
		Funct7: (instr >> 25) & 0x7F,
		Rd:     (instr >> 7) & 0x1F,
		Rs1:    (instr >> 15) & 0x1F,
		Rs2:    (instr >> 20) & 0x1F,
	}, nil
}

// ImmI reconstructs the I-type immediate: bits [31:20], sign-extended.
func ImmI(instr uint32) uint32 {
	return uint32(int32(instr) >> 20)
}

// ImmS reconstructs the S-type immediate: the I-type high bits with the low
// five replaced by instruction bits [11:7].
func ImmS(instr uint32) uint32 {
	return (ImmI(instr) &^ 0x1F) | ((instr >> 7) & 0x1F)
}

// ImmB reconstructs the B-type immediate: bit 12 and bits [10:5] come from
// the I-type high bits, bit 11 from instruction bit 7, bits [4:1] from
// instruction bits [11:8]. Bit 0 is always zero.
func ImmB(instr uint32) uint32 {
	low := (instr >> 7) & 0x1F &^ 1
	mid := (instr << 4) & (1 << 11)
	high := ImmI(instr) &^ 0x1F &^ (1 << 11)
	return low | mid | high
}

// ImmU reconstructs the U-type immediate: bits [31:12] in place, low 12 zero.
func ImmU(instr uint32) uint32 {
	return instr &^ uint32(0xFFF)
}

// ImmJ reconstructs the J-type immediate: bit 20 (sign) and bits [10:1] from
// the I-type layout, bits [19:12] in place, bit 11 from instruction bit 20.
// Bit 0 is always zero.
func ImmJ(instr uint32) uint32 {
	a := ImmI(instr) & 0xFFF007FE
	b := instr & 0x000FF000
	c := (instr & (1 << 20)) >> 9
	return a | b | c
}
