// Package zobrist maintains an incremental, order-independent board
// fingerprint: the XOR of one random key per (cell, role) placement.
package zobrist

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// Roles is the number of stone kinds a cell can hold.
const Roles = 2

// Hasher owns the key table and the running accumulator for one board.
type Hasher struct {
	size int
	keys []uint64
	hash uint64
}

// New builds a key per (cell, role) for a size x size board. The same
// (size, seed) pair always yields the same table.
func New(size int, seed uint64) *Hasher {
	rng := NewRNG(seed, uint64(size))
	h := &Hasher{size: size, keys: make([]uint64, size*size*Roles)}
	var buf [8]byte
	for i := range h.keys {
		rng.Read(buf[:])
		h.keys[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return h
}

// Toggle XORs the key of (x, y, role) into the accumulator. Applying the same
// toggle twice restores the previous value.
func (h *Hasher) Toggle(x, y, role int) {
	h.hash ^= h.key(x, y, role)
}

// Hash returns the current fingerprint.
func (h *Hasher) Hash() uint64 {
	return h.hash
}

// Size is the board edge the table was built for.
func (h *Hasher) Size() int {
	return h.size
}

func (h *Hasher) key(x, y, role int) uint64 {
	return h.keys[(x*h.size+y)*Roles+role]
}

// NewRNG returns a deterministic ChaCha8 generator for (seed, salt). frand
// only reads the 32-byte key; its buffer size and round count arguments are
// ignored since v1.5, so one pair is used everywhere.
func NewRNG(seed, salt uint64) *frand.RNG {
	return frand.NewCustom(SeedBytes(seed, salt), rngBufSize, rngRounds)
}

const (
	rngBufSize = 1024
	rngRounds  = 8
)

// SeedBytes stretches a 64-bit seed into the 32-byte key frand.NewCustom
// expects. Different salts give unrelated streams for the same seed.
func SeedBytes(seed, salt uint64) []byte {
	rng := splitmix64{state: seed ^ (salt * 0x9e3779b97f4a7c15)}
	out := make([]byte, 32)
	for i := 0; i < len(out); i += 8 {
		binary.LittleEndian.PutUint64(out[i:], rng.next())
	}
	return out
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
