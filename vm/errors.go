package vm

import (
	"errors"
	"fmt"
)

// Fault sentinels, one per kind in the fault taxonomy. Step wraps them in a
// *Fault carrying the faulting pc and a code constant from the riscv
// package, so callers route on errors.Is and logs keep the raw code.
var (
	// ErrDecode: instruction bit pattern not in the opcode-class table.
	// Fatal, the engine has no defined behavior past it.
	ErrDecode = errors.New("decode fault")
	// ErrInstruction: recognized opcode class but unrecognized funct3/funct7
	// combination within System or Amo. Fatal.
	ErrInstruction = errors.New("instruction fault")
	// ErrStall: unrecognized funct3 within Load/Store/Branch. The step
	// aborts with no state change; re-stepping refetches the same word.
	ErrStall = errors.New("stalled step")
	// ErrUnimplemented: the instruction is recognized but has no semantics
	// yet (ECALL).
	ErrUnimplemented = errors.New("unimplemented instruction")
	// ErrMemRange: a physical access whose offset falls outside the backing
	// array. Fatal.
	ErrMemRange = errors.New("memory access out of range")
)

// Fault is a step failure annotated with where and why.
type Fault struct {
	Code uint32
	PC   uint32
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v at pc %08x (code %x)", f.Err, f.PC, f.Code)
}

func (f *Fault) Unwrap() error { return f.Err }

func (s *VMState) fault(code uint32, kind error, format string, args ...any) error {
	return &Fault{Code: code, PC: s.PC, Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}
