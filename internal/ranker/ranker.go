package ranker

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidCapacity is returned when a ranker is constructed with a capacity below 1.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	// ErrIndexOutOfRange is returned by At for a rank outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Ranker retains the items with the largest keys seen so far, up to a fixed capacity.
//
// Items are kept sorted by key, largest first. Among items with equal keys the
// most recently inserted one ranks highest. A Ranker is not safe for concurrent use.
type Ranker[T any, K constraints.Ordered] struct {
	key      func(T) K
	capacity int
	entries  []T
}

// New creates an empty ranker holding at most capacity items ordered by key.
func New[T any, K constraints.Ordered](capacity int, key func(T) K) (*Ranker[T, K], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	if key == nil {
		return nil, errors.New("key function must not be nil")
	}

	return &Ranker[T, K]{
		key:      key,
		capacity: capacity,
		// One extra slot absorbs the transient overflow before eviction.
		entries: make([]T, 0, capacity+1),
	}, nil
}

// IsFull reports whether the ranker holds capacity items.
func (r *Ranker[T, K]) IsFull() bool {
	return len(r.entries) == r.capacity
}

// IsEmpty reports whether the ranker holds no items.
func (r *Ranker[T, K]) IsEmpty() bool {
	return len(r.entries) == 0
}

// SmallestAcceptedSize returns the key of the lowest-ranked item, the eviction threshold.
// It returns the zero value of K when the ranker is empty; use IsEmpty to tell
// that apart from a real zero key.
func (r *Ranker[T, K]) SmallestAcceptedSize() K {
	if r.IsEmpty() {
		var zero K

		return zero
	}

	return r.key(r.entries[len(r.entries)-1])
}

// Admits reports whether inserting an item with the given key would change the
// retained set. Callers use it to skip work for candidates that would be dropped.
func (r *Ranker[T, K]) Admits(key K) bool {
	return !r.IsFull() || key >= r.SmallestAcceptedSize()
}

// Insert places item at its rank and evicts the smallest item if the capacity is exceeded.
//
// An item ranks ahead of every existing item with an equal key. Inserting into a
// full ranker an item smaller than all retained items leaves the ranker unchanged.
func (r *Ranker[T, K]) Insert(item T) {
	if r.IsEmpty() {
		r.entries = append(r.entries, item)

		return
	}

	k := r.key(item)

	// First rank whose key is not greater than k.
	pos := sort.Search(len(r.entries), func(i int) bool {
		return r.key(r.entries[i]) <= k
	})

	if pos == r.capacity {
		return
	}

	var zero T

	r.entries = append(r.entries, zero)
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = item

	if len(r.entries) > r.capacity {
		r.entries[len(r.entries)-1] = zero
		r.entries = r.entries[:r.capacity]
	}
}

// At returns the item at the given 0-based rank.
func (r *Ranker[T, K]) At(index int) (T, error) {
	if index < 0 || index >= len(r.entries) {
		var zero T

		return zero, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, len(r.entries))
	}

	return r.entries[index], nil
}

// Len returns the number of retained items.
func (r *Ranker[T, K]) Len() int {
	return len(r.entries)
}

// Cap returns the capacity fixed at construction.
func (r *Ranker[T, K]) Cap() int {
	return r.capacity
}

// Entries returns a copy of the retained items in rank order.
func (r *Ranker[T, K]) Entries() []T {
	out := make([]T, len(r.entries))
	copy(out, r.entries)

	return out
}

// All iterates over the retained items in rank order, yielding the rank and the item.
func (r *Ranker[T, K]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, e := range r.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}
