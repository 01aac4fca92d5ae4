package utils

import (
	"math/bits"

	"github.com/pkg/errors"
)

// HammingDistance computes the hamming distance between two binary descriptors
// packed as 64-bit words.
func HammingDistance(p1, p2 []uint64) (int, error) {
	if len(p1) != len(p2) {
		return -1, errors.Errorf("descriptors must have same length (%d != %d)", len(p1), len(p2))
	}
	distance := 0
	for i := range p1 {
		distance += bits.OnesCount64(p1[i] ^ p2[i])
	}
	return distance, nil
}
