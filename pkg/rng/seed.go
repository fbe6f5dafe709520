package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a fresh run seed from crypto/rand. Only the low 32 bits
// feed the generator, so seeds are drawn from that range.
func NewSeed() (int64, error) {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint32(b[:])), nil
}
