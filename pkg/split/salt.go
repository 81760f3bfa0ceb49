package split

import (
	"math/big"
	"math/rand/v2"
)

// saltWords is the number of 64-bit draws that make up one salt.
const saltWords = 4

// Salt derives the per-call salt from seed: a 256-bit integer drawn from a PCG
// generator created for this call only, rendered in decimal.
func Salt(seed int64) string {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	salt := new(big.Int)
	word := new(big.Int)
	for range saltWords {
		salt.Lsh(salt, 64)
		salt.Or(salt, word.SetUint64(rng.Uint64()))
	}
	return salt.String()
}
