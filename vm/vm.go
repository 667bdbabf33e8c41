// Package vm implements the simulator core: a single-hart RV32IA engine
// over a flat 16 MiB physical window. Step is the unit of atomicity; one
// call performs fetch, decode, dispatch and retire, and nothing else ever
// mutates the state.
package vm

import (
	"github.com/obelisc/obelisc/riscv"
)

// Step runs a single instruction.
//
// On success and on a debug-halt (EBREAK, s.Exited set) it returns nil. Any
// other outcome is a *Fault: a fatal decode or instruction fault leaves pc
// where it was, ErrStall leaves the whole state untouched so a retry
// refetches the identical word, and ECALL surfaces ErrUnimplemented.
// Stepping an exited state is a no-op.
func Step(s *VMState) error {
	if s.Exited {
		return nil
	}

	// An unmapped pc reads as instruction word 0, which decodes as a load;
	// a pc past the end of the physical window is a memory fault.
	instr, err := s.Memory.LoadWord(s.PC)
	if err != nil {
		return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "fetch: %v", err)
	}
	dec, err := riscv.Decode(instr)
	if err != nil {
		return s.fault(riscv.ErrUnknownOpCode, ErrDecode, "%v", err)
	}

	// Operand reads happen before any effect is computed.
	rs1 := s.Registers[dec.Rs1]
	rs2 := s.Registers[dec.Rs2]

	// rdVal is committed at retirement. Defaulting to the current value
	// makes "no write" and "write rd" the same commit path.
	rdVal := s.Registers[dec.Rd]
	nextPC := s.PC + 4

	switch dec.Opcode {
	case riscv.OpcodeLoad: // 00_000_11
		addr := rs1 + riscv.ImmI(instr)
		switch dec.Funct3 {
		case riscv.Funct3LB:
			v, err := s.Memory.LoadByte(addr)
			if err != nil {
				return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
			}
			rdVal = uint32(int32(int8(v)))
		case riscv.Funct3LH:
			v, err := s.Memory.LoadHalf(addr)
			if err != nil {
				return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
			}
			rdVal = uint32(int32(int16(v)))
		case riscv.Funct3LW:
			v, err := s.Memory.LoadWord(addr)
			if err != nil {
				return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
			}
			rdVal = v
		case riscv.Funct3LBU:
			v, err := s.Memory.LoadByte(addr)
			if err != nil {
				return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
			}
			rdVal = uint32(v)
		case riscv.Funct3LHU:
			v, err := s.Memory.LoadHalf(addr)
			if err != nil {
				return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
			}
			rdVal = uint32(v)
		default:
			return s.fault(riscv.ErrUnalignedLoadWidth, ErrStall, "invalid load width %d", dec.Funct3)
		}

	case riscv.OpcodeStore: // 01_000_11
		addr := rs1 + riscv.ImmS(instr)
		var err error
		switch dec.Funct3 {
		case riscv.Funct3SB:
			err = s.Memory.StoreByte(addr, byte(rs2))
		case riscv.Funct3SH:
			err = s.Memory.StoreHalf(addr, uint16(rs2))
		case riscv.Funct3SW:
			err = s.Memory.StoreWord(addr, rs2)
		default:
			return s.fault(riscv.ErrUnalignedStoreWidth, ErrStall, "invalid store width %d", dec.Funct3)
		}
		if err != nil {
			return s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
		}

	case riscv.OpcodeBranch: // 11_000_11
		var taken bool
		switch dec.Funct3 {
		case riscv.Funct3BEQ:
			taken = rs1 == rs2
		case riscv.Funct3BNE:
			taken = rs1 != rs2
		case riscv.Funct3BLT:
			taken = int32(rs1) < int32(rs2)
		case riscv.Funct3BGE:
			taken = int32(rs1) >= int32(rs2)
		case riscv.Funct3BLTU:
			taken = rs1 < rs2
		case riscv.Funct3BGEU:
			taken = rs1 >= rs2
		default:
			return s.fault(riscv.ErrBadBranchCondition, ErrStall, "invalid branch condition %d", dec.Funct3)
		}
		if taken {
			nextPC = s.PC + riscv.ImmB(instr)
		}

	case riscv.OpcodeJalr: // 11_001_11
		rdVal = s.PC + 4
		nextPC = (rs1 + riscv.ImmI(instr)) &^ 1

	case riscv.OpcodeJal: // 11_011_11
		rdVal = s.PC + 4
		nextPC = s.PC + riscv.ImmJ(instr)

	case riscv.OpcodeMiscMem: // 00_011_11: fence is a no-op, only one hart

	case riscv.OpcodeOpImm: // 00_100_11
		imm := riscv.ImmI(instr)
		switch dec.Funct3 {
		case riscv.Funct3ADD:
			rdVal = rs1 + imm
		case riscv.Funct3SLT:
			rdVal = b2u(int32(rs1) < int32(imm))
		case riscv.Funct3SLTU:
			rdVal = b2u(rs1 < imm)
		case riscv.Funct3XOR:
			rdVal = rs1 ^ imm
		case riscv.Funct3OR:
			rdVal = rs1 | imm
		case riscv.Funct3AND:
			rdVal = rs1 & imm
		case riscv.Funct3SLL:
			rdVal = rs1 << (imm & 0x1F)
		case riscv.Funct3SR:
			shamt := imm & 0x1F
			if imm&(1<<10) == 0 {
				rdVal = rs1 >> shamt
			} else {
				rdVal = uint32(int32(rs1) >> shamt)
			}
		}

	case riscv.OpcodeOp: // 01_100_11
		switch dec.Funct3 {
		case riscv.Funct3ADD:
			if dec.Funct7&(1<<5) == 0 {
				rdVal = rs1 + rs2
			} else {
				rdVal = rs1 - rs2
			}
		case riscv.Funct3SLT:
			rdVal = b2u(int32(rs1) < int32(rs2))
		case riscv.Funct3SLTU:
			rdVal = b2u(rs1 < rs2)
		case riscv.Funct3XOR:
			rdVal = rs1 ^ rs2
		case riscv.Funct3OR:
			rdVal = rs1 | rs2
		case riscv.Funct3AND:
			rdVal = rs1 & rs2
		case riscv.Funct3SLL:
			rdVal = rs1 << (rs2 & 0x1F)
		case riscv.Funct3SR:
			shamt := rs2 & 0x1F
			if dec.Funct7&(1<<5) == 0 {
				rdVal = rs1 >> shamt
			} else {
				rdVal = uint32(int32(rs1) >> shamt)
			}
		}

	case riscv.OpcodeSystem: // 11_100_11
		funct12 := instr >> 20
		if dec.Funct3 == riscv.Funct3PRIV {
			switch funct12 {
			case riscv.Funct12ECALL:
				return s.fault(riscv.ErrEcallUnsupported, ErrUnimplemented, "ECALL")
			case riscv.Funct12EBREAK:
				// Debug halt: the engine stops before retiring, so the
				// cycle count reports only fully retired instructions.
				s.Exited = true
				s.ExitCode = 0
				return nil
			default:
				return s.fault(riscv.ErrUnknownSystemOp, ErrInstruction, "system funct12 %03x", funct12)
			}
		}
		mode := dec.Funct3 & 3
		if mode == 0 {
			return s.fault(riscv.ErrUnknownCSRMode, ErrInstruction, "system funct3 %d", dec.Funct3)
		}
		operand := rs1
		if dec.Funct3&4 != 0 {
			// Immediate form: the raw rs1 field, zero-extended.
			operand = dec.Rs1
		}
		old := s.CSR[funct12]
		switch mode {
		case 1: // ?01 = CSRRW(I)
			s.CSR[funct12] = operand
		case 2: // ?10 = CSRRS(I)
			s.CSR[funct12] = old | operand
		case 3: // ?11 = CSRRC(I)
			s.CSR[funct12] = old &^ operand
		}
		rdVal = old

	case riscv.OpcodeAuipc: // 00_101_11
		rdVal = s.PC + riscv.ImmU(instr)

	case riscv.OpcodeLui: // 01_101_11
		rdVal = riscv.ImmU(instr)

	case riscv.OpcodeAmo: // 01_011_11
		if dec.Funct3 != riscv.Funct3AmoW {
			return s.fault(riscv.ErrBadAMOSize, ErrInstruction, "invalid AMO width %d", dec.Funct3)
		}
		// The address is the rs1 register value; AMOs carry no immediate.
		addr := rs1
		v, err := amoW(s, dec.Funct7>>2, addr, rs2)
		if err != nil {
			return err
		}
		rdVal = v

	default:
		return s.fault(riscv.ErrUnknownOpCode, ErrDecode, "unhandled opcode %02x", dec.Opcode)
	}

	// Retire: the rd write, pc update and cycle increment commit together,
	// and x0 is forced back to zero so writes targeting it are discarded.
	s.Registers[dec.Rd] = rdVal
	s.Registers[0] = 0
	s.PC = nextPC
	s.Cycles++
	return nil
}

// amoW performs one word-granularity atomic memory operation and returns
// the value rd receives. The read-modify-write is indivisible because the
// engine is the only execution context.
func amoW(s *VMState, funct5, addr, rs2 uint32) (uint32, error) {
	switch funct5 {
	case riscv.Funct5AmoLR:
		// Load-reserved is a plain word load; with one hart the
		// reservation always holds.
		v, err := s.Memory.LoadWord(addr)
		if err != nil {
			return 0, s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
		}
		return v, nil
	case riscv.Funct5AmoSC:
		// Store-conditional always succeeds, rd reports 0.
		if err := s.Memory.StoreWord(addr, rs2); err != nil {
			return 0, s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
		}
		return 0, nil
	}

	old, err := s.Memory.LoadWord(addr)
	if err != nil {
		return 0, s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
	}
	v := old
	switch funct5 {
	case riscv.Funct5AmoSWAP:
		v = rs2
	case riscv.Funct5AmoADD:
		v = old + rs2
	case riscv.Funct5AmoXOR:
		v = old ^ rs2
	case riscv.Funct5AmoAND:
		v = old & rs2
	case riscv.Funct5AmoOR:
		v = old | rs2
	case riscv.Funct5AmoMIN:
		if int32(rs2) < int32(old) {
			v = rs2
		}
	case riscv.Funct5AmoMAX:
		if int32(rs2) > int32(old) {
			v = rs2
		}
	case riscv.Funct5AmoMINU:
		if rs2 < old {
			v = rs2
		}
	case riscv.Funct5AmoMAXU:
		if rs2 > old {
			v = rs2
		}
	default:
		return 0, s.fault(riscv.ErrUnknownAtomicOp, ErrInstruction, "unknown atomic operation %02x", funct5)
	}
	if err := s.Memory.StoreWord(addr, v); err != nil {
		return 0, s.fault(riscv.ErrMemOutOfRange, ErrMemRange, "%v", err)
	}
	return old, nil
}

// Run steps the state until it exits, a step faults, or maxSteps steps have
// run (0 means unbounded). It is a thin wrapper; embedders that need finer
// control call Step themselves.
func Run(s *VMState, maxSteps uint64) error {
	for i := uint64(0); !s.Exited && (maxSteps == 0 || i < maxSteps); i++ {
		if err := Step(s); err != nil {
			return err
		}
	}
	return nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
