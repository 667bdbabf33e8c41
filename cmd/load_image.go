package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/obelisc/obelisc/vm"
)

var (
	LoadImagePathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to raw little-endian machine-code image",
		TakesFile: true,
		Required:  true,
	}
	LoadImageOutFlag = &cli.PathFlag{
		Name:      "out",
		Usage:     "Output path of JSON state. Stdout if '-'.",
		Value:     "state.json",
		TakesFile: true,
	}
)

func LoadImage(ctx *cli.Context) error {
	imagePath := ctx.Path(LoadImagePathFlag.Name)
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image file %q: %w", imagePath, err)
	}
	state, err := vm.LoadImage(data)
	if err != nil {
		return fmt.Errorf("failed to load image into VM state: %w", err)
	}
	l := Logger(os.Stderr, log.LevelInfo)
	l.Info("loaded image", "image", imagePath, "size", len(data), "entry", HexU32(state.PC), "mem", state.Memory.Usage())
	return WriteJSON(ctx.Path(LoadImageOutFlag.Name), state, OutFilePerm)
}

var LoadImageCommand = &cli.Command{
	Name:        "load-image",
	Usage:       "Load raw machine-code image into obelisc JSON state",
	Description: "Load a raw little-endian machine-code image at the physical base address into obelisc JSON state",
	Action:      LoadImage,
	Flags: []cli.Flag{
		LoadImagePathFlag,
		LoadImageOutFlag,
	},
}
