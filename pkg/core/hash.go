package core

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashFunc maps a string to a 64-bit digest. Implementations must produce the
// same digest for the same bytes on every platform and in every process.
type HashFunc func(value string) uint64

const (
	HashXX64   = "xxhash64"
	HashFNV64a = "fnv64a"
)

func XXHash64(value string) uint64 {
	return xxhash.Sum64String(value)
}

func FNV64a(value string) uint64 {
	hash := fnv.New64a()
	hash.Write([]byte(value))
	return hash.Sum64()
}

// ParseHashFunc resolves a configured hash name. An empty name selects xxhash64.
func ParseHashFunc(name string) (HashFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HashXX64:
		return XXHash64, nil
	case HashFNV64a:
		return FNV64a, nil
	default:
		return nil, fmt.Errorf("%w: unknown hash function %q", ErrConfiguration, name)
	}
}

// Bucket reads digest as a signed 64-bit integer and reduces its absolute value
// modulo buckets. The magnitude is taken in two's complement so that the most
// negative value does not overflow.
func Bucket(digest uint64, buckets int) int {
	if buckets <= 0 {
		return 0
	}
	magnitude := digest
	if int64(digest) < 0 {
		magnitude = ^digest + 1
	}
	return int(magnitude % uint64(buckets))
}
