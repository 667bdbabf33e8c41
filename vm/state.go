package vm

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ResetPC is the fixed physical base address execution starts from.
const ResetPC = PhysBase

// CSRCount is the size of the CSR address space: 12-bit addressing.
const CSRCount = 4096

// CSRFile is the control/status register store: 4096 independent 32-bit
// slots, pure storage with no side effects of its own. JSON-encoded as the
// little-endian packed bytes trimmed of trailing zeros.
type CSRFile [CSRCount]uint32

func (c *CSRFile) pack() []byte {
	out := make([]byte, 4*CSRCount)
	for i, v := range c {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	end := len(out)
	for end > 0 && out[end-1] == 0 {
		end--
	}
	return out[:end]
}

func (c *CSRFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Bytes(c.pack()))
}

func (c *CSRFile) UnmarshalJSON(data []byte) error {
	var packed hexutil.Bytes
	if err := json.Unmarshal(data, &packed); err != nil {
		return err
	}
	if len(packed) > 4*CSRCount {
		return fmt.Errorf("packed CSR file of %d bytes exceeds %d slots", len(packed), CSRCount)
	}
	var full [4 * CSRCount]byte
	copy(full[:], packed)
	for i := range c {
		c[i] = binary.LittleEndian.Uint32(full[i*4:])
	}
	return nil
}

// VMState is the full simulator state owned by one engine instance:
// registers, CSR file, memory, pc and the retired-instruction counter.
// Independent instances never share state, so tests can run many in
// parallel.
type VMState struct {
	Memory *Memory `json:"memory"`

	PC uint32 `json:"pc"`

	CSR CSRFile `json:"csr"`

	ExitCode uint8 `json:"exit"`
	Exited   bool  `json:"exited"`

	// Cycles counts retired instructions. A step that aborts mid-dispatch
	// does not increment it.
	Cycles uint64 `json:"cycles"`

	Registers [32]uint32 `json:"registers"`
}

func NewVMState() *VMState {
	return &VMState{
		Memory: NewMemory(),
		PC:     ResetPC,
	}
}

// Reset zeroes registers, CSRs and the cycle counter and returns the pc to
// the reset address. Memory is left alone; the image loader owns it.
func (s *VMState) Reset() {
	s.Registers = [32]uint32{}
	s.CSR = CSRFile{}
	s.PC = ResetPC
	s.Cycles = 0
	s.Exited = false
	s.ExitCode = 0
}

// Instr fetches the instruction word at the current pc. An unmapped pc
// yields instruction word 0, the same as the load path.
func (s *VMState) Instr() uint32 {
	v, err := s.Memory.LoadWord(s.PC)
	if err != nil {
		return 0
	}
	return v
}

const StateWitnessSize = 32 + 32 + 4 + 1 + 1 + 8 + 32*4

type StateWitness []byte

const (
	VMStatusValid      = 0
	VMStatusInvalid    = 1
	VMStatusPanic      = 2
	VMStatusUnfinished = 3
)

// EncodeWitness packs the state into its canonical binary form:
// keccak(memory image), keccak(packed CSR file), then pc, exit code, exited
// flag, cycle count and the 32 registers, numbers big-endian.
func (s *VMState) EncodeWitness() StateWitness {
	out := make([]byte, 0, StateWitnessSize)
	memRoot := s.Memory.MerkleizeImage()
	out = append(out, memRoot[:]...)
	csrRoot := crypto.Keccak256(s.CSR.pack())
	out = append(out, csrRoot...)
	out = binary.BigEndian.AppendUint32(out, s.PC)
	out = append(out, s.ExitCode)
	if s.Exited {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = binary.BigEndian.AppendUint64(out, s.Cycles)
	for _, r := range s.Registers {
		out = binary.BigEndian.AppendUint32(out, r)
	}
	return out
}

// StateHash condenses a witness to a single hash with the VM status folded
// into the first byte.
func (sw StateWitness) StateHash() (common.Hash, error) {
	if len(sw) != StateWitnessSize {
		return common.Hash{}, fmt.Errorf("invalid witness length: %d, expected %d", len(sw), StateWitnessSize)
	}
	hash := crypto.Keccak256Hash(sw)
	offset := 32 + 32 + 4
	exitCode := sw[offset]
	exited := sw[offset+1]
	status := vmStatus(exited == 1, exitCode)
	hash[0] = status
	return hash, nil
}

func vmStatus(exited bool, exitCode uint8) uint8 {
	if !exited {
		return VMStatusUnfinished
	}
	switch exitCode {
	case 0:
		return VMStatusValid
	case 1:
		return VMStatusInvalid
	default:
		return VMStatusPanic
	}
}
