package ranker_test

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/largest/internal/ranker"
)

func insertAll(t *testing.T, r *ranker.Files, entries ...ranker.Entry) {
	t.Helper()

	for _, e := range entries {
		r.Insert(e)
		require.LessOrEqual(t, r.Len(), r.Cap())
	}
}

func paths(r *ranker.Files) []string {
	out := make([]string, 0, r.Len())
	for _, e := range r.All() {
		out = append(out, e.Path)
	}

	return out
}

func TestNew_InvalidCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		r, err := ranker.NewFiles(capacity)
		require.ErrorIs(t, err, ranker.ErrInvalidCapacity)
		assert.Nil(t, r)
	}
}

func TestNew_NilKey(t *testing.T) {
	t.Parallel()

	_, err := ranker.New[int, int](3, nil)
	require.Error(t, err)
}

func TestRanker_Empty(t *testing.T) {
	t.Parallel()

	r, err := ranker.NewFiles(3)
	require.NoError(t, err)

	assert.True(t, r.IsEmpty())
	assert.False(t, r.IsFull())
	assert.Zero(t, r.SmallestAcceptedSize())
	assert.Zero(t, r.Len())
	assert.Equal(t, 3, r.Cap())
	assert.True(t, r.Admits(0))
}

func TestRanker_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
		input    []ranker.Entry
		want     []string
	}{
		{
			name:     "keeps three largest",
			capacity: 3,
			input: []ranker.Entry{
				{Path: "a", Size: 10},
				{Path: "b", Size: 5},
				{Path: "c", Size: 20},
				{Path: "d", Size: 15},
				{Path: "e", Size: 1},
			},
			want: []string{"c", "d", "a"},
		},
		{
			name:     "newest wins ties",
			capacity: 2,
			input: []ranker.Entry{
				{Path: "a", Size: 5},
				{Path: "b", Size: 5},
				{Path: "c", Size: 5},
			},
			want: []string{"c", "b"},
		},
		{
			name:     "capacity one keeps the largest",
			capacity: 1,
			input: []ranker.Entry{
				{Path: "a", Size: 3},
				{Path: "b", Size: 9},
				{Path: "c", Size: 4},
			},
			want: []string{"b"},
		},
		{
			name:     "equal sizes fill without eviction",
			capacity: 3,
			input: []ranker.Entry{
				{Path: "a", Size: 7},
				{Path: "b", Size: 7},
				{Path: "c", Size: 7},
			},
			want: []string{"c", "b", "a"},
		},
		{
			name:     "tie placed ahead of equal but behind larger",
			capacity: 4,
			input: []ranker.Entry{
				{Path: "a", Size: 8},
				{Path: "b", Size: 4},
				{Path: "c", Size: 2},
				{Path: "d", Size: 4},
			},
			want: []string{"a", "d", "b", "c"},
		},
		{
			name:     "fewer than capacity",
			capacity: 10,
			input: []ranker.Entry{
				{Path: "a", Size: 1},
				{Path: "b", Size: 2},
			},
			want: []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := ranker.NewFiles(tt.capacity)
			require.NoError(t, err)

			insertAll(t, r, tt.input...)

			assert.Equal(t, tt.want, paths(r))
		})
	}
}

func TestRanker_InsertBelowThresholdWhenFull(t *testing.T) {
	t.Parallel()

	r, err := ranker.NewFiles(2)
	require.NoError(t, err)

	insertAll(t, r, ranker.Entry{Path: "a", Size: 10}, ranker.Entry{Path: "b", Size: 20})
	require.True(t, r.IsFull())
	assert.False(t, r.Admits(9))
	assert.True(t, r.Admits(10))

	r.Insert(ranker.Entry{Path: "c", Size: 9})
	assert.Equal(t, []string{"b", "a"}, paths(r))

	r.Insert(ranker.Entry{Path: "d", Size: 10})
	assert.Equal(t, []string{"b", "d"}, paths(r))
}

func TestRanker_At(t *testing.T) {
	t.Parallel()

	r, err := ranker.NewFiles(2)
	require.NoError(t, err)

	insertAll(t, r, ranker.Entry{Path: "a", Size: 1}, ranker.Entry{Path: "b", Size: 2})

	e, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, ranker.Entry{Path: "b", Size: 2}, e)

	e, err = r.At(1)
	require.NoError(t, err)
	assert.Equal(t, "a", e.Path)

	for _, idx := range []int{-1, 2, 100} {
		_, err := r.At(idx)
		require.ErrorIs(t, err, ranker.ErrIndexOutOfRange)
	}
}

func TestRanker_EntriesIsCopy(t *testing.T) {
	t.Parallel()

	r, err := ranker.NewFiles(2)
	require.NoError(t, err)

	insertAll(t, r, ranker.Entry{Path: "a", Size: 1})

	entries := r.Entries()
	entries[0].Path = "mutated"

	e, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, "a", e.Path)
}

func TestRanker_AllStopsEarly(t *testing.T) {
	t.Parallel()

	r, err := ranker.NewFiles(5)
	require.NoError(t, err)

	for i := range 5 {
		r.Insert(ranker.Entry{Path: strconv.Itoa(i), Size: uint64(i)})
	}

	var seen []int
	for rank := range r.All() {
		seen = append(seen, rank)
		if rank == 1 {
			break
		}
	}

	assert.Equal(t, []int{0, 1}, seen)
}

func TestRanker_GenericKey(t *testing.T) {
	t.Parallel()

	type score struct {
		name  string
		value float64
	}

	r, err := ranker.New(2, func(s score) float64 { return s.value })
	require.NoError(t, err)

	r.Insert(score{"low", -1.5})
	r.Insert(score{"high", 3.25})
	r.Insert(score{"mid", 0})

	got := r.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].name)
	assert.Equal(t, "mid", got[1].name)
	assert.InDelta(t, 0.0, r.SmallestAcceptedSize(), 0)
}

// oracle ranks the input with a stable sort: larger first, later arrivals first among equals.
func oracle(input []ranker.Entry, k int) []ranker.Entry {
	type indexed struct {
		ranker.Entry
		seq int
	}

	all := make([]indexed, len(input))
	for i, e := range input {
		all[i] = indexed{Entry: e, seq: i}
	}

	slices.SortFunc(all, func(a, b indexed) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}

		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]ranker.Entry, 0, k)
	for _, e := range all[:min(k, len(all))] {
		out = append(out, e.Entry)
	}

	return out
}

func TestRanker_MatchesOracle(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 7))

	for round := range 200 {
		k := 1 + rng.IntN(12)
		n := rng.IntN(60)

		input := make([]ranker.Entry, n)
		for i := range input {
			// Narrow range to force plenty of ties.
			input[i] = ranker.Entry{Path: strconv.Itoa(i), Size: uint64(rng.IntN(20))}
		}

		r, err := ranker.NewFiles(k)
		require.NoError(t, err)

		var (
			saturated bool
			threshold uint64
		)

		for _, e := range input {
			r.Insert(e)

			require.LessOrEqual(t, r.Len(), k, "round %d", round)

			if r.IsFull() {
				if saturated {
					require.GreaterOrEqual(t, r.SmallestAcceptedSize(), threshold, "round %d", round)
				}

				saturated = true
				threshold = r.SmallestAcceptedSize()
			}
		}

		got := r.Entries()
		require.True(t, slices.IsSortedFunc(got, func(a, b ranker.Entry) int {
			return cmp.Compare(b.Size, a.Size)
		}), "round %d", round)
		require.Equal(t, oracle(input, k), got, "round %d", round)
	}
}

func TestRanker_OrderIndependentSizes(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	input := make([]ranker.Entry, 100)
	for i := range input {
		input[i] = ranker.Entry{Path: strconv.Itoa(i), Size: uint64(rng.IntN(1000))}
	}

	sizes := func(entries []ranker.Entry) []uint64 {
		out := make([]uint64, len(entries))
		for i, e := range entries {
			out[i] = e.Size
		}

		return out
	}

	r, err := ranker.NewFiles(10)
	require.NoError(t, err)
	insertAll(t, r, input...)

	want := sizes(r.Entries())

	for range 20 {
		rng.Shuffle(len(input), func(i, j int) { input[i], input[j] = input[j], input[i] })

		shuffled, err := ranker.NewFiles(10)
		require.NoError(t, err)
		insertAll(t, shuffled, input...)

		assert.Equal(t, want, sizes(shuffled.Entries()))
	}
}

func BenchmarkRanker_Insert(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))

	r, err := ranker.NewFiles(100)
	require.NoError(b, err)

	b.ResetTimer()

	for i := range b.N {
		size := rng.Uint64()
		if r.Admits(size) {
			r.Insert(ranker.Entry{Path: strconv.Itoa(i), Size: size})
		}
	}
}
