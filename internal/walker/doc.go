// Package walker produces file size candidates from a directory tree.
//
// It walks the tree using fastwalk for parallel traversal, applies the
// depth, exclusion, size and extension filters, and hands each surviving
// regular file to a callback one at a time.
package walker
