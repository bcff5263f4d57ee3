// Package vvector implements the per-peer logical clock used to decide
// what each side of a sync needs from the other. It is grounded
// directly on original_source/crates/core/src/sync/vector/algo.rs: a
// sorted-by-PeerID slice merged/intersected/diffed with a linear
// merge-join, translated from Rust's SmallVec<(PeerId,u64)> into an
// idiomatic Go slice.
package vvector

import (
	"sort"

	"github.com/orneryd/deve-ledger/pkg/models"
)

// entry is one (peer, seq) pair.
type entry struct {
	Peer models.PeerID
	Seq  uint64
}

// VersionVector maps PeerID -> last observed seq. The zero value is the
// empty vector (every peer implicitly at 0).
type VersionVector struct {
	clock []entry // kept sorted by Peer
}

// New returns an empty VersionVector.
func New() *VersionVector {
	return &VersionVector{}
}

// Get returns the recorded seq for peer, or 0 if absent.
func (v *VersionVector) Get(peer models.PeerID) uint64 {
	i := v.search(peer)
	if i < len(v.clock) && v.clock[i].Peer == peer {
		return v.clock[i].Seq
	}
	return 0
}

func (v *VersionVector) search(peer models.PeerID) int {
	return sort.Search(len(v.clock), func(i int) bool { return v.clock[i].Peer >= peer })
}

// Update sets clock[peer] = max(clock[peer], seq) — monotone.
func (v *VersionVector) Update(peer models.PeerID, seq uint64) {
	i := v.search(peer)
	if i < len(v.clock) && v.clock[i].Peer == peer {
		if seq > v.clock[i].Seq {
			v.clock[i].Seq = seq
		}
		return
	}
	v.clock = append(v.clock, entry{})
	copy(v.clock[i+1:], v.clock[i:])
	v.clock[i] = entry{Peer: peer, Seq: seq}
}

// Clone returns an independent deep copy.
func (v *VersionVector) Clone() *VersionVector {
	out := &VersionVector{clock: make([]entry, len(v.clock))}
	copy(out.clock, v.clock)
	return out
}

// Equal reports whether v and other record identical (peer, seq)
// pairs (absent == seq 0, so a trailing zero entry still compares
// equal to an absence).
func (v *VersionVector) Equal(other *VersionVector) bool {
	a, _ := v.diffPairs(other)
	b, _ := other.diffPairs(v)
	return len(a) == 0 && len(b) == 0
}

// Merge folds other into v in place: clock[p] = max(v[p], other[p]).
func (v *VersionVector) Merge(other *VersionVector) {
	result := make([]entry, 0, len(v.clock)+len(other.clock))
	i, j := 0, 0
	for i < len(v.clock) && j < len(other.clock) {
		a, b := v.clock[i], other.clock[j]
		switch {
		case a.Peer < b.Peer:
			result = append(result, a)
			i++
		case a.Peer > b.Peer:
			result = append(result, b)
			j++
		default:
			seq := a.Seq
			if b.Seq > seq {
				seq = b.Seq
			}
			result = append(result, entry{Peer: a.Peer, Seq: seq})
			i++
			j++
		}
	}
	result = append(result, v.clock[i:]...)
	result = append(result, other.clock[j:]...)
	v.clock = result
}

// Intersection returns the pointwise minimum of v and other (the LCA),
// dropping any peer whose minimum is zero.
func (v *VersionVector) Intersection(other *VersionVector) *VersionVector {
	result := &VersionVector{}
	i, j := 0, 0
	for i < len(v.clock) && j < len(other.clock) {
		a, b := v.clock[i], other.clock[j]
		switch {
		case a.Peer < b.Peer:
			i++
		case a.Peer > b.Peer:
			j++
		default:
			min := a.Seq
			if b.Seq < min {
				min = b.Seq
			}
			if min > 0 {
				result.clock = append(result.clock, entry{Peer: a.Peer, Seq: min})
			}
			i++
			j++
		}
	}
	return result
}

// Range is a half-open [Start, End) range of sequence numbers authored
// by Peer.
type Range struct {
	Peer  models.PeerID
	Start uint64
	End   uint64
}

// Diff compares v (mine) against remote (theirs). missingFromRemote
// lists the ranges I have that they don't; missingFromLocal lists the
// ranges they have that I don't.
func (v *VersionVector) Diff(remote *VersionVector) (missingFromRemote, missingFromLocal []Range) {
	return v.diffPairs(remote)
}

func (v *VersionVector) diffPairs(remote *VersionVector) (missingFromRemote, missingFromLocal []Range) {
	i, j := 0, 0
	for i < len(v.clock) && j < len(remote.clock) {
		a, b := v.clock[i], remote.clock[j]
		switch {
		case a.Peer < b.Peer:
			if a.Seq > 0 {
				missingFromRemote = append(missingFromRemote, Range{Peer: a.Peer, Start: 1, End: a.Seq + 1})
			}
			i++
		case a.Peer > b.Peer:
			if b.Seq > 0 {
				missingFromLocal = append(missingFromLocal, Range{Peer: b.Peer, Start: 1, End: b.Seq + 1})
			}
			j++
		default:
			if a.Seq > b.Seq {
				missingFromRemote = append(missingFromRemote, Range{Peer: a.Peer, Start: b.Seq + 1, End: a.Seq + 1})
			} else if b.Seq > a.Seq {
				missingFromLocal = append(missingFromLocal, Range{Peer: a.Peer, Start: a.Seq + 1, End: b.Seq + 1})
			}
			i++
			j++
		}
	}
	for ; i < len(v.clock); i++ {
		a := v.clock[i]
		if a.Seq > 0 {
			missingFromRemote = append(missingFromRemote, Range{Peer: a.Peer, Start: 1, End: a.Seq + 1})
		}
	}
	for ; j < len(remote.clock); j++ {
		b := remote.clock[j]
		if b.Seq > 0 {
			missingFromLocal = append(missingFromLocal, Range{Peer: b.Peer, Start: 1, End: b.Seq + 1})
		}
	}
	return missingFromRemote, missingFromLocal
}

// Entries returns the (peer, seq) pairs sorted by PeerID, suitable for
// canonical serialization (the handshake signing payload).
func (v *VersionVector) Entries() []struct {
	Peer models.PeerID
	Seq  uint64
} {
	out := make([]struct {
		Peer models.PeerID
		Seq  uint64
	}, len(v.clock))
	for i, e := range v.clock {
		out[i].Peer = e.Peer
		out[i].Seq = e.Seq
	}
	return out
}
