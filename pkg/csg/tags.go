package csg

import "sync/atomic"

// Tag is a process-unique identity for vertices, planes and shared material
// records. Two values with the same Tag are treated as the same object by
// canonicalization and retesselation regardless of their coordinates.
type Tag uint64

// Tags hands out identities. Tags are issued in steps of two so that the
// flipped twin of a plane can use the neighbouring odd value.
//
// A Tags is safe for concurrent use.
type Tags struct {
	next atomic.Uint64
}

// NewTags returns an allocator whose first tag is 2. Tag 0 is never issued and
// marks "no identity" (for example a nil *Shared).
func NewTags() *Tags {
	return &Tags{}
}

// Next returns a fresh tag.
func (t *Tags) Next() Tag {
	return Tag(t.next.Add(2))
}

// twin returns the tag paired with tag, used for flipped planes.
func (tag Tag) twin() Tag {
	return tag ^ 1
}
