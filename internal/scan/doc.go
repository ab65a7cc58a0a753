// Package scan runs the walk-and-rank loop.
//
// A walker goroutine produces candidates and a single consumer goroutine
// feeds them into a bounded ranker, so only the largest files seen so far
// are ever held in memory.
package scan
