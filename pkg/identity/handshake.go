package identity

import (
	"encoding/json"
	"sort"

	"github.com/orneryd/deve-ledger/pkg/models"
)

// VectorEntry is one (peer, seq) pair of a version vector, exported
// here (rather than imported from pkg/vvector) to keep identity free of
// a dependency on the sync subsystem; pkg/vvector converts to/from this
// shape at its boundary.
type VectorEntry struct {
	Peer models.PeerID `json:"peer"`
	Seq  uint64        `json:"seq"`
}

// handshakeMagic is the literal signed prefix, matching the original
// "deve-handshake" invariant from spec.md §4.2.
const handshakeMagic = "deve-handshake"

// CanonicalHandshakePayload builds the exact byte sequence a peer signs
// (and the receiver re-derives and verifies) during the sync handshake:
// the magic string, the peer's PeerID bytes, and a canonical
// (peer-ID-sorted) JSON encoding of its version vector. Determinism of
// the vector encoding is itself a signed invariant — any reordering
// would make an honestly-signed handshake fail to verify.
func CanonicalHandshakePayload(peerID models.PeerID, vector []VectorEntry) ([]byte, error) {
	sorted := make([]VectorEntry, len(vector))
	copy(sorted, vector)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Peer < sorted[j].Peer })

	vecBytes, err := json.Marshal(sorted)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(handshakeMagic)+len(peerID)+len(vecBytes))
	out = append(out, handshakeMagic...)
	out = append(out, peerID...)
	out = append(out, vecBytes...)
	return out, nil
}
