package vm

import (
	"fmt"
	"io"
)

// LoadImage builds a fresh VMState from a raw little-endian machine-code
// image. The image has no header: byte 0 lands at physical offset 0 and is
// executed at the reset address. The rest of the window is zero-padded and
// the state is reset as part of the same operation.
func LoadImage(data []byte) (*VMState, error) {
	state := NewVMState()
	if err := state.Memory.SetImage(data); err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	state.Reset()
	return state, nil
}

// ReadImage is LoadImage over a reader.
func ReadImage(r io.Reader) (*VMState, error) {
	data, err := io.ReadAll(io.LimitReader(r, MemorySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return LoadImage(data)
}
