// Package split assigns rows to a training or a test set deterministically.
//
// A row goes to the training set when
//
//	|hash(naturalKey + salt(seed))| mod denominator < numerator
//
// so the assignment depends only on the row's natural key, the seed and the
// fraction. It does not depend on the order of the rows, on how many rows are
// processed together or on how the work is chunked across goroutines.
package split

import (
	"fmt"
	"strings"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/workers"
)

// KeyDelimiter joins the natural key fields.
const KeyDelimiter = ","

const defaultChunkSize = 4096

type Options struct {
	Seed     int64
	Fraction core.Fraction
	// Hash defaults to core.XXHash64.
	Hash core.HashFunc
	// Workers bounds the goroutines used for hashing. Non-positive values use
	// GOMAXPROCS.
	Workers int
	// ChunkSize is the number of rows hashed per task.
	ChunkSize int
	// StrictKeys rejects inputs in which two rows share a natural key.
	StrictKeys bool
}

// DefaultOptions returns the settings of the reference run: seed 222 and a
// 3/4 training share.
func DefaultOptions() Options {
	return Options{
		Seed:     222,
		Fraction: core.DefaultTrainFraction,
		Hash:     core.XXHash64,
	}
}

func (o Options) normalized() (Options, error) {
	if err := o.Fraction.Validate(); err != nil {
		return o, err
	}
	if o.Hash == nil {
		o.Hash = core.XXHash64
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	return o, nil
}

// NaturalKey joins key fields into a Natural Key String. Every field must be
// non-empty.
func NaturalKey(fields ...string) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: natural key has no fields", core.ErrInvalidInput)
	}
	for i, field := range fields {
		if field == "" {
			return "", fmt.Errorf("%w: natural key field %d is empty", core.ErrInvalidInput, i)
		}
	}
	return strings.Join(fields, KeyDelimiter), nil
}

// Assign returns the is-train flag for every key, in input order.
func Assign(keys []string, opts Options) ([]bool, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no rows to partition", core.ErrInvalidInput)
	}
	for i, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("%w: row %d has an empty natural key", core.ErrInvalidInput, i)
		}
	}
	if opts.StrictKeys {
		if dup, ok := firstDuplicate(keys); ok {
			return nil, fmt.Errorf("%w: duplicate natural key %q", core.ErrInvalidInput, dup)
		}
	}

	salt := Salt(opts.Seed)
	train := make([]bool, len(keys))
	err = workers.ForEachChunk(len(keys), opts.ChunkSize, opts.Workers, func(start, end int) error {
		for i := start; i < end; i++ {
			digest := opts.Hash(keys[i] + salt)
			train[i] = opts.Fraction.Contains(core.Bucket(digest, opts.Fraction.Denominator))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return train, nil
}

// KeyFunc extracts the natural key fields of a row.
type KeyFunc[R any] func(row R) ([]string, error)

// Partition splits rows into training and test rows. Both results are newly
// allocated slices; rows keep their relative input order. rows is not modified.
func Partition[R any](rows []R, key KeyFunc[R], opts Options) (train, test []R, err error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no rows to partition", core.ErrInvalidInput)
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		fields, err := key(row)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		keys[i], err = NaturalKey(fields...)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	isTrain, err := Assign(keys, opts)
	if err != nil {
		return nil, nil, err
	}

	train = make([]R, 0, len(rows))
	test = make([]R, 0, len(rows)/2)
	for i, row := range rows {
		if isTrain[i] {
			train = append(train, row)
		} else {
			test = append(test, row)
		}
	}
	return train, test, nil
}

// DuplicateKeys counts the rows whose key already appeared earlier in keys.
func DuplicateKeys(keys []string) int {
	seen := make(map[string]struct{}, len(keys))
	duplicates := 0
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

func firstDuplicate(keys []string) (string, bool) {
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			return key, true
		}
		seen[key] = struct{}{}
	}
	return "", false
}
