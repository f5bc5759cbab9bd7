// Package prng provides deterministic, replayable randomness for combat and
// interception rolls. Reproducibility is a hard contract: every roll must be
// derivable from (shipment id, tick, hop index) alone, never from an
// unseeded global source.
package prng

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"lukechampine.com/blake3"
)

// Seed hashes the given parts with BLAKE3 and folds the digest into an
// int64 seed, mirroring the hash-to-float idiom used for planet/resource
// efficiency rolls elsewhere in this code's ancestry.
func Seed(parts ...string) int64 {
	h := blake3.New(32, nil)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
	}
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// ForHop returns a *rand.Rand seeded deterministically from the shipment id,
// tick, and hop index — the contract required by the interception roll.
func ForHop(shipmentID string, tick int64, hopIndex int) *rand.Rand {
	seed := Seed(shipmentID, fmt.Sprintf("%d", tick), fmt.Sprintf("%d", hopIndex))
	return rand.New(rand.NewSource(seed))
}

// Gaussian draws a Normal(mean, sigma) sample from r — used to jitter
// combat strengths during interception resolution.
func Gaussian(r *rand.Rand, mean, sigma float64) float64 {
	return mean + r.NormFloat64()*sigma
}
