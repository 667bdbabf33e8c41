package cmd

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/obelisc/obelisc/riscv"
	"github.com/obelisc/obelisc/vm"
)

func runApp(t *testing.T, args ...string) error {
	t.Helper()
	app := cli.NewApp()
	app.Name = "obelisc"
	app.Commands = []*cli.Command{RunCommand}
	return app.Run(append([]string{"obelisc", "run"}, args...))
}

func writeStateFile(t *testing.T, dir string, insns ...uint32) string {
	t.Helper()
	img := make([]byte, 4*len(insns))
	for i, insn := range insns {
		binary.LittleEndian.PutUint32(img[i*4:], insn)
	}
	state, err := vm.LoadImage(img)
	require.NoError(t, err)
	path := filepath.Join(dir, "state.json")
	require.NoError(t, WriteJSON(path, state, OutFilePerm))
	return path
}

func TestRunCommand(t *testing.T) {
	t.Run("runs to the breakpoint", func(t *testing.T) {
		dir := t.TempDir()
		in := writeStateFile(t, dir, riscv.ADDI(1, 0, 42), riscv.EBREAK())
		out := filepath.Join(dir, "out.json")

		require.NoError(t, runApp(t, "--input", in, "--output", out))

		res, err := LoadJSON[vm.VMState](out)
		require.NoError(t, err)
		require.True(t, res.Exited)
		require.Equal(t, uint64(1), res.Cycles)
		require.Equal(t, uint32(42), res.Registers[1])
	})

	t.Run("steps bound terminates a stalled program", func(t *testing.T) {
		dir := t.TempDir()
		// load with funct3=3: every attempt aborts with no state change,
		// so only the iteration bound can end the run
		in := writeStateFile(t, dir, riscv.EncodeI(riscv.OpcodeLoad, 1, 3, 0, 0))
		out := filepath.Join(dir, "out.json")

		require.NoError(t, runApp(t, "--input", in, "--output", out, "--steps", "5"))

		res, err := LoadJSON[vm.VMState](out)
		require.NoError(t, err)
		require.False(t, res.Exited)
		require.Zero(t, res.Cycles, "a stalled step never retires")
	})

	t.Run("steps bound counts retired steps too", func(t *testing.T) {
		dir := t.TempDir()
		in := writeStateFile(t, dir, riscv.JAL(0, 0)) // jump-to-self
		out := filepath.Join(dir, "out.json")

		require.NoError(t, runApp(t, "--input", in, "--output", out, "--steps", "7"))

		res, err := LoadJSON[vm.VMState](out)
		require.NoError(t, err)
		require.Equal(t, uint64(7), res.Cycles)
	})

	t.Run("strict stops on a stall", func(t *testing.T) {
		dir := t.TempDir()
		in := writeStateFile(t, dir, riscv.EncodeI(riscv.OpcodeLoad, 1, 3, 0, 0))
		out := filepath.Join(dir, "out.json")

		err := runApp(t, "--input", in, "--output", out, "--strict")
		require.ErrorIs(t, err, vm.ErrStall)
	})

	t.Run("trace", func(t *testing.T) {
		dir := t.TempDir()
		in := writeStateFile(t, dir, riscv.ADD(3, 1, 2), riscv.EBREAK())
		out := filepath.Join(dir, "out.json")

		require.NoError(t, runApp(t, "--input", in, "--output", out, "--trace"))
	})
}
