// Package ids allocates monotone, process-unique identifiers for mirrors,
// links and topology structure nodes.
package ids

import "sync/atomic"

// Allocator hands out monotonically increasing identifiers from three
// independent counters. The zero value is ready to use.
type Allocator struct {
	mirrors atomic.Uint64
	links   atomic.Uint64
	nodes   atomic.Uint64
}

// NextMirror returns the next unused mirror identifier, starting at 1.
func (a *Allocator) NextMirror() uint64 { return a.mirrors.Add(1) }

// NextLink returns the next unused link identifier, starting at 1.
func (a *Allocator) NextLink() uint64 { return a.links.Add(1) }

// NextNode returns the next unused structure-node identifier, starting at 1.
func (a *Allocator) NextNode() uint64 { return a.nodes.Add(1) }
