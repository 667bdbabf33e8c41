package riscv

// Opcode-class values. Classification keys on instruction bits [6:2];
// the constants carry the canonical full 7-bit opcode byte.
const (
	OpcodeLoad    = uint32(0x03) // 00_000_11
	OpcodeMiscMem = uint32(0x0F) // 00_011_11
	OpcodeOpImm   = uint32(0x13) // 00_100_11
	OpcodeAuipc   = uint32(0x17) // 00_101_11
	OpcodeAmo     = uint32(0x2F) // 01_011_11
	OpcodeStore   = uint32(0x23) // 01_000_11
	OpcodeOp      = uint32(0x33) // 01_100_11
	OpcodeLui     = uint32(0x37) // 01_101_11
	OpcodeBranch  = uint32(0x63) // 11_000_11
	OpcodeJalr    = uint32(0x67) // 11_001_11
	OpcodeJal     = uint32(0x6F) // 11_011_11
	OpcodeSystem  = uint32(0x73) // 11_100_11
)

// funct3 codes within the Load opcode class.
const (
	Funct3LB  = uint32(0)
	Funct3LH  = uint32(1)
	Funct3LW  = uint32(2)
	Funct3LBU = uint32(4)
	Funct3LHU = uint32(5)
)

// funct3 codes within the Store opcode class.
const (
	Funct3SB = uint32(0)
	Funct3SH = uint32(1)
	Funct3SW = uint32(2)
)

// funct3 codes within the Branch opcode class.
const (
	Funct3BEQ  = uint32(0)
	Funct3BNE  = uint32(1)
	Funct3BLT  = uint32(4)
	Funct3BGE  = uint32(5)
	Funct3BLTU = uint32(6)
	Funct3BGEU = uint32(7)
)

// funct3 codes shared by the OpImm and Op classes.
const (
	Funct3ADD  = uint32(0)
	Funct3SLL  = uint32(1)
	Funct3SLT  = uint32(2)
	Funct3SLTU = uint32(3)
	Funct3XOR  = uint32(4)
	Funct3SR   = uint32(5)
	Funct3OR   = uint32(6)
	Funct3AND  = uint32(7)
)

// funct3 codes within the System opcode class.
// CSR instructions encode the operation in the low two bits
// (1=RW, 2=RS, 3=RC) and the operand source in bit 2
// (0 = rs1 register value, 1 = zero-extended raw rs1 field).
const (
	Funct3PRIV   = uint32(0)
	Funct3CSRRW  = uint32(1)
	Funct3CSRRS  = uint32(2)
	Funct3CSRRC  = uint32(3)
	Funct3CSRRWI = uint32(5)
	Funct3CSRRSI = uint32(6)
	Funct3CSRRCI = uint32(7)
)

// funct12 values under System/funct3=0.
const (
	Funct12ECALL  = uint32(0)
	Funct12EBREAK = uint32(1)
)

// AMO subtype, selected by funct7 >> 2.
const (
	Funct5AmoADD  = uint32(0x00)
	Funct5AmoSWAP = uint32(0x01)
	Funct5AmoLR   = uint32(0x02)
	Funct5AmoSC   = uint32(0x03)
	Funct5AmoXOR  = uint32(0x04)
	Funct5AmoOR   = uint32(0x08)
	Funct5AmoAND  = uint32(0x0C)
	Funct5AmoMIN  = uint32(0x10)
	Funct5AmoMAX  = uint32(0x14)
	Funct5AmoMINU = uint32(0x18)
	Funct5AmoMAXU = uint32(0x1C)
)

// Word AMOs require funct3 = 2.
const Funct3AmoW = uint32(2)

// Fault codes, reported alongside the fault error for log/trace scraping.
const (
	ErrUnknownOpCode       = uint32(0xf001c0de)
	ErrUnknownAtomicOp     = uint32(0xf001a70)
	ErrUnknownCSRMode      = uint32(0xbadc0de0)
	ErrUnknownSystemOp     = uint32(0xbad5a5ca)
	ErrBadAMOSize          = uint32(0xbada70)
	ErrUnalignedLoadWidth  = uint32(0xbad10ad)
	ErrUnalignedStoreWidth = uint32(0xbad5708e)
	ErrBadBranchCondition  = uint32(0xbadb4a)
	ErrMemOutOfRange       = uint32(0xbadacce5)
	ErrEcallUnsupported    = uint32(0xbadeca11)
)

// RegNames maps register indices to their ABI names, for logging.
var RegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}
