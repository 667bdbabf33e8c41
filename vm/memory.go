package vm

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// MemorySize is the capacity of the physical address window: 16 MiB.
const MemorySize = 1 << 24

// PhysBase is where the physical window appears in the 32-bit address
// space. Bit 31 selects physical memory; the low 31 bits are the offset.
const (
	PhysBase = uint32(0x8000_0000)
	physMask = uint32(0x7FFF_FFFF)
)

// Memory is a flat byte-addressable backing store behind the bit-31 address
// partition. Addresses with bit 31 set map to the backing array at offset
// addr & 0x7FFFFFFF, bounds-checked. Addresses with bit 31 clear are
// unmapped: loads read zero and stores are dropped. That region is a
// stand-in for a future device/MMIO layer, not an error condition.
//
// The byte access is the sole primitive; half and word accesses are composed
// from it little-endian, low byte at the lower address.
type Memory struct {
	data []byte
}

func NewMemory() *Memory {
	return &Memory{data: make([]byte, MemorySize)}
}

// LoadByte reads one byte. Unmapped addresses read as zero.
func (m *Memory) LoadByte(addr uint32) (byte, error) {
	if addr&PhysBase == 0 {
		return 0, nil
	}
	offset := addr & physMask
	if offset >= uint32(len(m.data)) {
		return 0, fmt.Errorf("%w: load at %08x, physical offset %08x beyond %08x", ErrMemRange, addr, offset, len(m.data))
	}
	return m.data[offset], nil
}

// StoreByte writes one byte. Stores to unmapped addresses are dropped.
func (m *Memory) StoreByte(addr uint32, v byte) error {
	if addr&PhysBase == 0 {
		return nil
	}
	offset := addr & physMask
	if offset >= uint32(len(m.data)) {
		return fmt.Errorf("%w: store at %08x, physical offset %08x beyond %08x", ErrMemRange, addr, offset, len(m.data))
	}
	m.data[offset] = v
	return nil
}

func (m *Memory) LoadHalf(addr uint32) (uint16, error) {
	lo, err := m.LoadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.LoadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (m *Memory) LoadWord(addr uint32) (uint32, error) {
	lo, err := m.LoadHalf(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.LoadHalf(addr + 2)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (m *Memory) StoreHalf(addr uint32, v uint16) error {
	if err := m.StoreByte(addr, byte(v)); err != nil {
		return err
	}
	return m.StoreByte(addr+1, byte(v>>8))
}

func (m *Memory) StoreWord(addr uint32, v uint32) error {
	if err := m.StoreHalf(addr, uint16(v)); err != nil {
		return err
	}
	return m.StoreHalf(addr+2, uint16(v>>16))
}

// SetImage replaces the memory contents with data starting at physical
// offset 0 and zero-pads the remainder of the window.
func (m *Memory) SetImage(data []byte) error {
	if len(data) > len(m.data) {
		return fmt.Errorf("%w: image of %d bytes does not fit in %d bytes of memory", ErrMemRange, len(data), len(m.data))
	}
	copy(m.data, data)
	for i := len(data); i < len(m.data); i++ {
		m.data[i] = 0
	}
	return nil
}

// UsedBytes is the size of the memory image up to the last non-zero byte.
func (m *Memory) UsedBytes() uint32 {
	end := len(m.data)
	for end > 0 && m.data[end-1] == 0 {
		end--
	}
	return uint32(end)
}

// Usage renders the used image size human-readable, for log lines.
func (m *Memory) Usage() string {
	total := uint64(m.UsedBytes())
	const unit = 1024
	if total < unit {
		return fmt.Sprintf("%d B", total)
	}
	div, exp := uint64(unit), 0
	for n := total / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	// KiB, MiB, GiB, TiB, ...
	return fmt.Sprintf("%.1f %ciB", float64(total)/float64(div), "KMGTPE"[exp])
}

// MerkleizeImage hashes the full memory window. Identical contents hash
// identically regardless of how they were written.
func (m *Memory) MerkleizeImage() [32]byte {
	return crypto.Keccak256Hash(m.data)
}

// JSON represents memory as the hex image trimmed of trailing zeros; the
// zero padding is restored on load.

func (m *Memory) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Bytes(m.data[:m.UsedBytes()]))
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var image hexutil.Bytes
	if err := json.Unmarshal(data, &image); err != nil {
		return err
	}
	if m.data == nil {
		m.data = make([]byte, MemorySize)
	}
	return m.SetImage(image)
}

// Serialize writes the memory in a simple binary format which can be read
// again using Deserialize: a big-endian uint32 image length followed by the
// image bytes, trailing zeros trimmed.
func (m *Memory) Serialize(out io.Writer) error {
	used := m.UsedBytes()
	if err := binary.Write(out, binary.BigEndian, used); err != nil {
		return err
	}
	_, err := out.Write(m.data[:used])
	return err
}

func (m *Memory) Deserialize(in io.Reader) error {
	var used uint32
	if err := binary.Read(in, binary.BigEndian, &used); err != nil {
		return err
	}
	if used > MemorySize {
		return fmt.Errorf("%w: serialized image of %d bytes does not fit in %d bytes of memory", ErrMemRange, used, MemorySize)
	}
	image := make([]byte, used)
	if _, err := io.ReadFull(in, image); err != nil {
		return err
	}
	if m.data == nil {
		m.data = make([]byte, MemorySize)
	}
	return m.SetImage(image)
}

// ReadImageRange reads count bytes of the physical image starting at offset.
func (m *Memory) ReadImageRange(offset, count uint32) io.Reader {
	end := uint64(offset) + uint64(count)
	if end > uint64(len(m.data)) {
		end = uint64(len(m.data))
	}
	if uint64(offset) >= end {
		return bytes.NewReader(nil)
	}
	return bytes.NewReader(m.data[offset:end])
}
