package merge

import (
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/reconstruct"
	"github.com/orneryd/deve-ledger/pkg/vvector"
)

// FindLCA returns the lowest-common-ancestor version vector of localVV
// and remoteVV: the pointwise minimum, per spec.md's "base_vv = local_vv
// ∩ remote_vv".
func FindLCA(localVV, remoteVV *vvector.VersionVector) *vvector.VersionVector {
	return localVV.Intersection(remoteVV)
}

// ReconstructStateAt folds the subset of allOps visible at vv (i.e.
// every entry whose seq does not exceed vv's recorded seq for its
// author) into text.
func ReconstructStateAt(allOps []models.LedgerEntry, vv *vvector.VersionVector) string {
	visible := make([]models.LedgerEntry, 0, len(allOps))
	for _, e := range allOps {
		if e.Seq <= vv.Get(e.PeerID) {
			visible = append(visible, e)
		}
	}
	return reconstruct.ReconstructContent(visible)
}
