package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/pkg/profile"

	"github.com/obelisc/obelisc/riscv"
	"github.com/obelisc/obelisc/vm"
)

var (
	RunInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state.",
		Value:     "state.json",
		TakesFile: true,
	}
	RunOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "path of output JSON state. Stdout if '-'.",
		Value:     "out.json",
		TakesFile: true,
	}
	RunStepsFlag = &cli.Uint64Flag{
		Name:  "steps",
		Usage: "maximum number of steps to attempt for this invocation, counting stalled retries. 0 to run without bound.",
		Value: 0,
	}
	RunStopAtFlag = &cli.GenericFlag{
		Name:  "stop-at",
		Usage: "step pattern to stop at: '%123' (every 123 steps), '=123' (at step 123), 'never' (default).",
		Value: MustStepMatcherFlag("never"),
	}
	RunSnapshotAtFlag = &cli.GenericFlag{
		Name:  "snapshot-at",
		Usage: "step pattern to write state snapshots at: '%123' (every 123 steps), '=123' (at step 123), 'never' (default).",
		Value: MustStepMatcherFlag("never"),
	}
	RunSnapshotFmtFlag = &cli.StringFlag{
		Name:  "snapshot-fmt",
		Usage: "format for snapshot output file names.",
		Value: "state-%d.json",
	}
	RunInfoAtFlag = &cli.GenericFlag{
		Name:  "info-at",
		Usage: "step pattern to print info at: '%123' (every 123 steps), '=123' (at step 123), 'never' (default).",
		Value: MustStepMatcherFlag("%100000"),
	}
	RunTraceFlag = &cli.BoolFlag{
		Name:  "trace",
		Usage: "log every executed instruction at debug level. Slow.",
	}
	RunStrictFlag = &cli.BoolFlag{
		Name: "strict",
		Usage: "fail hard on a stalled step (unrecognized funct3 in a load/store/branch) " +
			"instead of retrying the same instruction without bound.",
	}
	RunPProfCPU = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "enable pprof cpu profiling",
	}
)

func Run(ctx *cli.Context) error {
	if ctx.Bool(RunPProfCPU.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	state, err := LoadJSON[vm.VMState](ctx.Path(RunInputFlag.Name))
	if err != nil {
		return err
	}

	lvl := log.LevelInfo
	trace := ctx.Bool(RunTraceFlag.Name)
	if trace {
		lvl = log.LevelDebug
	}
	l := Logger(os.Stderr, lvl)

	stopAt := ctx.Generic(RunStopAtFlag.Name).(*StepMatcherFlag).Matcher()
	snapshotAt := ctx.Generic(RunSnapshotAtFlag.Name).(*StepMatcherFlag).Matcher()
	infoAt := ctx.Generic(RunInfoAtFlag.Name).(*StepMatcherFlag).Matcher()
	snapshotFmt := ctx.String(RunSnapshotFmtFlag.Name)
	maxSteps := ctx.Uint64(RunStepsFlag.Name)
	strict := ctx.Bool(RunStrictFlag.Name)

	start := time.Now()
	startCycles := state.Cycles

	// The cycle counter freezes on a stalled step, so the loop bounds itself
	// on its own iteration count and re-evaluates the cycle-keyed matchers
	// only when the counter moved. Otherwise a stalling program would spin
	// past --steps and re-fire --info-at/--snapshot-at on every retry.
	var iter uint64
	stalledAt := ^uint32(0)
	matchedCycles := ^uint64(0)

	for !state.Exited {
		if iter%100 == 0 { // don't do the ctx err check (includes lock) too often
			if err := ctx.Context.Err(); err != nil {
				return err
			}
		}
		if maxSteps != 0 && iter >= maxSteps {
			break
		}
		iter++

		if state.Cycles != matchedCycles {
			matchedCycles = state.Cycles

			if infoAt(state) {
				delta := time.Since(start)
				l.Info("processing",
					"cycle", state.Cycles,
					"pc", HexU32(state.PC),
					"insn", HexU32(state.Instr()),
					"ips", float64(state.Cycles-startCycles)/(float64(delta)/float64(time.Second)),
					"mem", state.Memory.Usage(),
				)
			}

			if stopAt(state) {
				break
			}

			if snapshotAt(state) {
				if err := WriteJSON(fmt.Sprintf(snapshotFmt, state.Cycles), state, OutFilePerm); err != nil {
					return fmt.Errorf("failed to write state snapshot: %w", err)
				}
			}
		}

		if trace {
			insn := state.Instr()
			attrs := []any{"cycle", state.Cycles, "pc", HexU32(state.PC), "insn", HexU32(insn)}
			if dec, err := riscv.Decode(insn); err == nil {
				attrs = append(attrs,
					"rd", riscv.RegNames[dec.Rd],
					"rs1", riscv.RegNames[dec.Rs1],
					"rs2", riscv.RegNames[dec.Rs2],
				)
			}
			l.Debug("step", attrs...)
		}

		if err := vm.Step(state); err != nil {
			if errors.Is(err, vm.ErrStall) {
				if strict {
					return fmt.Errorf("stalled at cycle %d (PC: %08x): %w", state.Cycles, state.PC, err)
				}
				// Same behavior as the hardware model: the step changed
				// nothing and the engine refetches the identical word.
				if state.PC != stalledAt {
					stalledAt = state.PC
					l.Warn("stalled on unrecognized instruction, retrying",
						"cycle", state.Cycles, "pc", HexU32(state.PC), "insn", HexU32(state.Instr()))
				}
				continue
			}
			return fmt.Errorf("failed at cycle %d (PC: %08x): %w", state.Cycles, state.PC, err)
		}
	}

	if state.Exited {
		if err := WriteDump(os.Stdout, state); err != nil {
			return fmt.Errorf("failed to write register dump: %w", err)
		}
	}

	if err := WriteJSON(ctx.Path(RunOutputFlag.Name), state, OutFilePerm); err != nil {
		return fmt.Errorf("failed to write state output: %w", err)
	}
	return nil
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run VM step(s) until the program hits its debug-halt breakpoint.",
	Description: "Run VM step(s) until the program hits its debug-halt breakpoint, a fault, or a stop condition. See flags to match when to output a snapshot, print info, or stop early.",
	Action:      Run,
	Flags: []cli.Flag{
		RunInputFlag,
		RunOutputFlag,
		RunStepsFlag,
		RunStopAtFlag,
		RunSnapshotAtFlag,
		RunSnapshotFmtFlag,
		RunInfoAtFlag,
		RunTraceFlag,
		RunStrictFlag,
		RunPProfCPU,
	},
}
