package cmd

import (
	"fmt"
	"io"

	"github.com/obelisc/obelisc/vm"
)

// WriteDump writes the debug-halt register dump: the retired-instruction
// count followed by every register as index, hex value and decimal value.
// The format is load-bearing; golden outputs of prior runs compare against
// it byte for byte.
func WriteDump(w io.Writer, state *vm.VMState) error {
	if _, err := fmt.Fprintln(w, "Hit EBREAK"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cycle count: %d\n", state.Cycles); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Register state:"); err != nil {
		return err
	}
	for i, v := range state.Registers {
		if _, err := fmt.Fprintf(w, " x%d: %x (%d)\n", i, v, v); err != nil {
			return err
		}
	}
	return nil
}
