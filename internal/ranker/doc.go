// Package ranker provides a bounded top-K collection.
//
// A Ranker keeps the K highest-keyed items seen in a stream in descending
// order, using a binary search to place each arrival and evicting the
// smallest item once the capacity is exceeded. It never holds more than K
// items, so it can follow a walk of unbounded length.
package ranker
