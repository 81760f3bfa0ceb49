package split

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
)

var fixtureKeys = []string{"AA,100,2013-01-01", "AA,101,2013-01-01", "DL,200,2013-06-15"}

func options(seed int64) Options {
	opts := DefaultOptions()
	opts.Seed = seed
	return opts
}

func syntheticKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("UA,%d,2013-%02d-%02d", i, 1+i%12, 1+i%28)
	}
	return keys
}

func TestSalt(t *testing.T) {
	require.Equal(t,
		"49488764820219995546898992358960484496238739858297282081929118690517583192043",
		Salt(222))
	require.Equal(t,
		"86506495931483727343168428598848434842708657522187327557211226450826909249845",
		Salt(223))
	require.Equal(t, Salt(-5), Salt(-5))
}

func TestAssign_Fixtures(t *testing.T) {
	tests := []struct {
		name     string
		seed     int64
		fraction core.Fraction
		hash     core.HashFunc
		want     []bool
	}{
		{name: "xxhash seed 222", seed: 222, fraction: core.DefaultTrainFraction, hash: core.XXHash64, want: []bool{true, true, false}},
		{name: "xxhash seed 223", seed: 223, fraction: core.DefaultTrainFraction, hash: core.XXHash64, want: []bool{true, true, true}},
		{name: "fnv seed 222", seed: 222, fraction: core.DefaultTrainFraction, hash: core.FNV64a, want: []bool{true, true, true}},
		{name: "xxhash 7/10", seed: 222, fraction: core.Fraction{Numerator: 7, Denominator: 10}, hash: core.XXHash64, want: []bool{false, false, true}},
		{name: "nil hash uses xxhash", seed: 222, fraction: core.DefaultTrainFraction, want: []bool{true, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Seed: tt.seed, Fraction: tt.fraction, Hash: tt.hash}
			got, err := Assign(fixtureKeys, opts)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAssign_SeedChangesFixture(t *testing.T) {
	a, err := Assign(fixtureKeys, options(222))
	require.NoError(t, err)
	b, err := Assign(fixtureKeys, options(223))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestAssign_Errors(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		opts    Options
		wantErr error
	}{
		{name: "no keys", keys: nil, opts: options(222), wantErr: core.ErrInvalidInput},
		{name: "empty key", keys: []string{"AA,1,2013-01-01", ""}, opts: options(222), wantErr: core.ErrInvalidInput},
		{name: "fraction of one", keys: fixtureKeys, opts: Options{Seed: 222, Fraction: core.Fraction{Numerator: 4, Denominator: 4}}, wantErr: core.ErrConfiguration},
		{name: "zero numerator", keys: fixtureKeys, opts: Options{Seed: 222, Fraction: core.Fraction{Numerator: 0, Denominator: 4}}, wantErr: core.ErrConfiguration},
		{name: "zero denominator", keys: fixtureKeys, opts: Options{Seed: 222, Fraction: core.Fraction{Numerator: 1, Denominator: 0}}, wantErr: core.ErrConfiguration},
		{name: "unset fraction", keys: fixtureKeys, opts: Options{Seed: 222}, wantErr: core.ErrConfiguration},
		{
			name:    "strict duplicates",
			keys:    []string{"AA,1,2013-01-01", "AA,2,2013-01-01", "AA,1,2013-01-01"},
			opts:    Options{Seed: 222, Fraction: core.DefaultTrainFraction, StrictKeys: true},
			wantErr: core.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assign(tt.keys, tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, got)
		})
	}
}

func TestAssign_DuplicatesShareAssignment(t *testing.T) {
	keys := []string{"AA,1,2013-01-01", "AA,2,2013-01-01", "AA,1,2013-01-01", "AA,2,2013-01-01"}
	got, err := Assign(keys, options(222))
	require.NoError(t, err)
	require.Equal(t, got[0], got[2])
	require.Equal(t, got[1], got[3])
	require.Equal(t, 2, DuplicateKeys(keys))
}

func TestAssign_ChunkingDoesNotMatter(t *testing.T) {
	keys := syntheticKeys(5000)

	want, err := Assign(keys, options(222))
	require.NoError(t, err)

	for _, chunk := range []int{1, 7, 333, 10000} {
		for _, workers := range []int{1, 3, 16} {
			opts := options(222)
			opts.ChunkSize = chunk
			opts.Workers = workers
			got, err := Assign(keys, opts)
			require.NoError(t, err)
			require.Equal(t, want, got, "chunk=%d workers=%d", chunk, workers)
		}
	}
}

func TestAssign_ProportionConverges(t *testing.T) {
	keys := syntheticKeys(100_000)

	for _, hash := range []core.HashFunc{core.XXHash64, core.FNV64a} {
		for _, seed := range []int64{222, 7} {
			opts := options(seed)
			opts.Hash = hash
			got, err := Assign(keys, opts)
			require.NoError(t, err)

			train := 0
			for _, ok := range got {
				if ok {
					train++
				}
			}
			share := float64(train) / float64(len(keys))
			require.InDelta(t, 0.75, share, 0.01, "seed %d", seed)
		}
	}
}

func TestAssign_SeedSensitivity(t *testing.T) {
	keys := syntheticKeys(10_000)

	for _, seed := range []int64{1, 222, 1 << 40} {
		a, err := Assign(keys, options(seed))
		require.NoError(t, err)
		b, err := Assign(keys, options(seed+1))
		require.NoError(t, err)

		changed := 0
		for i := range a {
			if a[i] != b[i] {
				changed++
			}
		}
		// Independent 3/4 draws disagree on 3/8 of the keys.
		require.Greater(t, float64(changed)/float64(len(keys)), 0.3)
	}
}

func TestNaturalKey(t *testing.T) {
	key, err := NaturalKey("AA", "100", "2013-01-01")
	require.NoError(t, err)
	require.Equal(t, "AA,100,2013-01-01", key)

	_, err = NaturalKey("AA", "", "2013-01-01")
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = NaturalKey()
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

type flight struct {
	Carrier string
	Number  int
	Date    string
	Late    bool
}

func flightKey(f flight) ([]string, error) {
	return []string{f.Carrier, fmt.Sprint(f.Number), f.Date}, nil
}

func TestPartition(t *testing.T) {
	rows := []flight{
		{Carrier: "AA", Number: 100, Date: "2013-01-01", Late: true},
		{Carrier: "AA", Number: 101, Date: "2013-01-01"},
		{Carrier: "DL", Number: 200, Date: "2013-06-15", Late: true},
	}
	before := slices.Clone(rows)

	train, test, err := Partition(rows, flightKey, options(222))
	require.NoError(t, err)
	require.Equal(t, rows[:2], train)
	require.Equal(t, rows[2:], test)
	require.Equal(t, before, rows)
}

func TestPartition_Errors(t *testing.T) {
	_, _, err := Partition([]flight{}, flightKey, options(222))
	require.ErrorIs(t, err, core.ErrInvalidInput)

	rows := []flight{{Carrier: "AA", Number: 1, Date: "2013-01-01"}}
	_, _, err = Partition(rows, flightKey, Options{Seed: 222, Fraction: core.Fraction{Numerator: 1, Denominator: 1}})
	require.ErrorIs(t, err, core.ErrConfiguration)

	missingDate := []flight{{Carrier: "AA", Number: 1}}
	train, test, err := Partition(missingDate, flightKey, options(222))
	require.ErrorIs(t, err, core.ErrInvalidInput)
	require.Nil(t, train)
	require.Nil(t, test)

	keyErr := fmt.Errorf("%w: no carrier", core.ErrInvalidInput)
	_, _, err = Partition(rows, func(flight) ([]string, error) { return nil, keyErr }, options(222))
	require.ErrorIs(t, err, keyErr)
}

func TestPartition_Properties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	nonEmptyKeys := gen.SliceOf(gen.Identifier()).Map(func(keys []string) []string {
		return append([]string{"AA,1,2013-01-01"}, keys...)
	})

	properties.Property("assignment ignores row order", prop.ForAll(
		func(keys []string, seed int64, shuffle uint64) bool {
			want, err := Assign(keys, options(seed))
			if err != nil {
				return false
			}
			byKey := make(map[string]bool, len(keys))
			for i, key := range keys {
				byKey[key] = want[i]
			}

			shuffled := slices.Clone(keys)
			rand.New(rand.NewPCG(shuffle, shuffle)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			got, err := Assign(shuffled, options(seed))
			if err != nil {
				return false
			}
			for i, key := range shuffled {
				if byKey[key] != got[i] {
					return false
				}
			}
			return true
		},
		nonEmptyKeys, gen.Int64(), gen.UInt64(),
	))

	properties.Property("repeated calls agree", prop.ForAll(
		func(keys []string, seed int64) bool {
			a, errA := Assign(keys, options(seed))
			b, errB := Assign(keys, options(seed))
			return errA == nil && errB == nil && slices.Equal(a, b)
		},
		nonEmptyKeys, gen.Int64(),
	))

	properties.Property("identical keys share a subset", prop.ForAll(
		func(keys []string, seed int64) bool {
			doubled := append(slices.Clone(keys), keys...)
			got, err := Assign(doubled, options(seed))
			if err != nil {
				return false
			}
			for i := range keys {
				if got[i] != got[i+len(keys)] {
					return false
				}
			}
			return true
		},
		nonEmptyKeys, gen.Int64(),
	))

	properties.Property("train and test cover every row once", prop.ForAll(
		func(keys []string, seed int64) bool {
			type row struct {
				index int
				key   string
			}
			rows := make([]row, len(keys))
			for i, key := range keys {
				rows[i] = row{index: i, key: key}
			}
			train, test, err := Partition(rows, func(r row) ([]string, error) {
				return []string{r.key}, nil
			}, options(seed))
			if err != nil || len(train)+len(test) != len(rows) {
				return false
			}
			seen := make([]int, len(rows))
			for _, r := range append(train, test...) {
				seen[r.index]++
			}
			for _, n := range seen {
				if n != 1 {
					return false
				}
			}
			return true
		},
		nonEmptyKeys, gen.Int64(),
	))

	properties.TestingRun(t)
}
