package riscv

// Instruction assembly helpers: the inverse of the decode laws. They exist
// for tooling and tests that need to build machine-code images without an
// external assembler, so they take signed immediates and do the field
// scattering themselves. Immediates out of range for the format are
// truncated to its field widths, same as an assembler's low-level encoders.

// EncodeR packs an R-type instruction.
func EncodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

// EncodeI packs an I-type instruction.
func EncodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

// EncodeS packs an S-type instruction.
func EncodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	immU := uint32(imm) & 0xFFF
	return ((immU >> 5) << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) |
		((immU & 0x1F) << 7) | opcode
}

// EncodeB packs a B-type instruction. imm is the byte offset; its bit 0 is
// discarded by the format.
func EncodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	immU := uint32(imm)
	return (((immU >> 12) & 0x1) << 31) | (((immU >> 5) & 0x3F) << 25) |
		(rs2 << 20) | (rs1 << 15) | (funct3 << 12) |
		(((immU >> 1) & 0xF) << 8) | (((immU >> 11) & 0x1) << 7) | opcode
}

// EncodeU packs a U-type instruction. imm supplies bits [31:12].
func EncodeU(opcode, rd uint32, imm uint32) uint32 {
	return (imm & 0xFFFFF000) | (rd << 7) | opcode
}

// EncodeJ packs a J-type instruction. imm is the byte offset; its bit 0 is
// discarded by the format.
func EncodeJ(opcode, rd uint32, imm int32) uint32 {
	immU := uint32(imm)
	return (((immU >> 20) & 0x1) << 31) | (((immU >> 1) & 0x3FF) << 21) |
		(((immU >> 11) & 0x1) << 20) | (((immU >> 12) & 0xFF) << 12) |
		(rd << 7) | opcode
}

// Mnemonic-level helpers for the instructions the simulator implements.

func ADDI(rd, rs1 uint32, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3ADD, rs1, imm) }
func SLTI(rd, rs1 uint32, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3SLT, rs1, imm) }
func SLTIU(rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, rd, Funct3SLTU, rs1, imm)
}
func XORI(rd, rs1 uint32, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3XOR, rs1, imm) }
func ORI(rd, rs1 uint32, imm int32) uint32  { return EncodeI(OpcodeOpImm, rd, Funct3OR, rs1, imm) }
func ANDI(rd, rs1 uint32, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3AND, rs1, imm) }
func SLLI(rd, rs1, shamt uint32) uint32 {
	return EncodeI(OpcodeOpImm, rd, Funct3SLL, rs1, int32(shamt&0x1F))
}
func SRLI(rd, rs1, shamt uint32) uint32 {
	return EncodeI(OpcodeOpImm, rd, Funct3SR, rs1, int32(shamt&0x1F))
}
func SRAI(rd, rs1, shamt uint32) uint32 {
	return EncodeI(OpcodeOpImm, rd, Funct3SR, rs1, int32(shamt&0x1F|(1<<10)))
}

func ADD(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3ADD, rs1, rs2, 0) }
func SUB(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3ADD, rs1, rs2, 0x20) }
func SLL(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3SLL, rs1, rs2, 0) }
func SLT(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3SLT, rs1, rs2, 0) }
func SLTU(rd, rs1, rs2 uint32) uint32 { return EncodeR(OpcodeOp, rd, Funct3SLTU, rs1, rs2, 0) }
func XOR(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3XOR, rs1, rs2, 0) }
func SRL(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3SR, rs1, rs2, 0) }
func SRA(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3SR, rs1, rs2, 0x20) }
func OR(rd, rs1, rs2 uint32) uint32   { return EncodeR(OpcodeOp, rd, Funct3OR, rs1, rs2, 0) }
func AND(rd, rs1, rs2 uint32) uint32  { return EncodeR(OpcodeOp, rd, Funct3AND, rs1, rs2, 0) }

func LB(rd, rs1 uint32, imm int32) uint32  { return EncodeI(OpcodeLoad, rd, Funct3LB, rs1, imm) }
func LH(rd, rs1 uint32, imm int32) uint32  { return EncodeI(OpcodeLoad, rd, Funct3LH, rs1, imm) }
func LW(rd, rs1 uint32, imm int32) uint32  { return EncodeI(OpcodeLoad, rd, Funct3LW, rs1, imm) }
func LBU(rd, rs1 uint32, imm int32) uint32 { return EncodeI(OpcodeLoad, rd, Funct3LBU, rs1, imm) }
func LHU(rd, rs1 uint32, imm int32) uint32 { return EncodeI(OpcodeLoad, rd, Funct3LHU, rs1, imm) }

func SB(rs1, rs2 uint32, imm int32) uint32 { return EncodeS(OpcodeStore, Funct3SB, rs1, rs2, imm) }
func SH(rs1, rs2 uint32, imm int32) uint32 { return EncodeS(OpcodeStore, Funct3SH, rs1, rs2, imm) }
func SW(rs1, rs2 uint32, imm int32) uint32 { return EncodeS(OpcodeStore, Funct3SW, rs1, rs2, imm) }

func BEQ(rs1, rs2 uint32, imm int32) uint32 { return EncodeB(OpcodeBranch, Funct3BEQ, rs1, rs2, imm) }
func BNE(rs1, rs2 uint32, imm int32) uint32 { return EncodeB(OpcodeBranch, Funct3BNE, rs1, rs2, imm) }
func BLT(rs1, rs2 uint32, imm int32) uint32 { return EncodeB(OpcodeBranch, Funct3BLT, rs1, rs2, imm) }
func BGE(rs1, rs2 uint32, imm int32) uint32 { return EncodeB(OpcodeBranch, Funct3BGE, rs1, rs2, imm) }
func BLTU(rs1, rs2 uint32, imm int32) uint32 {
	return EncodeB(OpcodeBranch, Funct3BLTU, rs1, rs2, imm)
}
func BGEU(rs1, rs2 uint32, imm int32) uint32 {
	return EncodeB(OpcodeBranch, Funct3BGEU, rs1, rs2, imm)
}

func JAL(rd uint32, imm int32) uint32 { return EncodeJ(OpcodeJal, rd, imm) }
func JALR(rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpcodeJalr, rd, 0, rs1, imm)
}

func LUI(rd, imm uint32) uint32   { return EncodeU(OpcodeLui, rd, imm) }
func AUIPC(rd, imm uint32) uint32 { return EncodeU(OpcodeAuipc, rd, imm) }

func FENCE() uint32 { return EncodeI(OpcodeMiscMem, 0, 0, 0, 0) }
func NOP() uint32   { return ADDI(0, 0, 0) }

func ECALL() uint32  { return EncodeI(OpcodeSystem, 0, Funct3PRIV, 0, int32(Funct12ECALL)) }
func EBREAK() uint32 { return EncodeI(OpcodeSystem, 0, Funct3PRIV, 0, int32(Funct12EBREAK)) }

// CSR instruction helpers. csr is the 12-bit CSR number. The immediate forms
// take the 5-bit zero-extended operand in place of a source register.
func CSRRW(rd, rs1, csr uint32) uint32 {
	return EncodeI(OpcodeSystem, rd, Funct3CSRRW, rs1, int32(csr))
}
func CSRRS(rd, rs1, csr uint32) uint32 {
	return EncodeI(OpcodeSystem, rd, Funct3CSRRS, rs1, int32(csr))
}
func CSRRC(rd, rs1, csr uint32) uint32 {
	return EncodeI(OpcodeSystem, rd, Funct3CSRRC, rs1, int32(csr))
}
func CSRRWI(rd, uimm, csr uint32) uint32 {
	return EncodeI(OpcodeSystem, rd, Funct3CSRRWI, uimm&0x1F, int32(csr))
}
func CSRRSI(rd, uimm, csr uint32) uint32 {
	return EncodeI(OpcodeSystem, rd, Funct3CSRRSI, uimm&0x1F, int32(csr))
}
func CSRRCI(rd, uimm, csr uint32) uint32 {
	return EncodeI(OpcodeSystem, rd, Funct3CSRRCI, uimm&0x1F, int32(csr))
}

// AMO instruction helpers, word width. The low two funct7 bits (aq/rl) are
// left clear; the simulator ignores them either way.
func amo(funct5, rd, rs1, rs2 uint32) uint32 {
	return EncodeR(OpcodeAmo, rd, Funct3AmoW, rs1, rs2, funct5<<2)
}

func LRW(rd, rs1 uint32) uint32           { return amo(Funct5AmoLR, rd, rs1, 0) }
func SCW(rd, rs1, rs2 uint32) uint32      { return amo(Funct5AmoSC, rd, rs1, rs2) }
func AMOSWAPW(rd, rs1, rs2 uint32) uint32 { return amo(Funct5AmoSWAP, rd, rs1, rs2) }
func AMOADDW(rd, rs1, rs2 uint32) uint32  { return amo(Funct5AmoADD, rd, rs1, rs2) }
func AMOXORW(rd, rs1, rs2 uint32) uint32  { return amo(Funct5AmoXOR, rd, rs1, rs2) }
func AMOANDW(rd, rs1, rs2 uint32) uint32  { return amo(Funct5AmoAND, rd, rs1, rs2) }
func AMOORW(rd, rs1, rs2 uint32) uint32   { return amo(Funct5AmoOR, rd, rs1, rs2) }
func AMOMINW(rd, rs1, rs2 uint32) uint32  { return amo(Funct5AmoMIN, rd, rs1, rs2) }
func AMOMAXW(rd, rs1, rs2 uint32) uint32  { return amo(Funct5AmoMAX, rd, rs1, rs2) }
func AMOMINUW(rd, rs1, rs2 uint32) uint32 { return amo(Funct5AmoMINU, rd, rs1, rs2) }
func AMOMAXUW(rd, rs1, rs2 uint32) uint32 { return amo(Funct5AmoMAXU, rd, rs1, rs2) }
