package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obelisc/obelisc/vm"
)

func TestWriteDump(t *testing.T) {
	state := vm.NewVMState()
	state.Cycles = 64
	state.Registers[1] = 55
	state.Registers[2] = 0xDEADBEEF
	state.Exited = true

	var buf strings.Builder
	require.NoError(t, WriteDump(&buf, state))
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3+32)
	require.Equal(t, "Hit EBREAK", lines[0])
	require.Equal(t, "Cycle count: 64", lines[1])
	require.Equal(t, "Register state:", lines[2])
	// hex values are lowercase and unpadded, matching prior golden outputs
	require.Equal(t, " x0: 0 (0)", lines[3])
	require.Equal(t, " x1: 37 (55)", lines[4])
	require.Equal(t, " x2: deadbeef (3735928559)", lines[5])
	require.Equal(t, " x31: 0 (0)", lines[34])
}
