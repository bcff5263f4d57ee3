// Package treedelta surfaces the Ledger Manager's path/DocID metadata
// as a file-tree structure and the incremental deltas external
// consumers (editor UI, CLI tree view) need to keep an O(1)-per-event
// mirror in sync, without re-sending the whole tree on every mutation.
// Grounded on spec.md §4.11; no direct original_source analog exists
// (the Rust core emits TreeDelta at the transport boundary, not as a
// standalone module), so this package's shape follows the teacher's
// own event-delta pattern in pkg/storage/schema.go's constraint/index
// change notifications.
package treedelta

import "github.com/orneryd/deve-ledger/pkg/models"

// FileNode is one entry in the document tree: a file carries a DocID,
// a folder does not.
type FileNode struct {
	NodeID   models.NodeID
	ParentID models.NodeID // zero value means root
	Name     string
	Path     string
	DocID    *models.DocID // nil for folders
}

// IsFolder reports whether n has no document attached.
func (n FileNode) IsFolder() bool { return n.DocID == nil }

// DeltaKind discriminates the four TreeDelta variants.
type DeltaKind int

const (
	Init DeltaKind = iota
	Add
	Remove
	Update
)

// TreeDelta is one incremental change to the tree. Init carries the
// full tree (after a rebuild); Add/Update carry the node's new state;
// Remove carries only the NodeID.
type TreeDelta struct {
	Kind DeltaKind

	// Roots is populated only for Kind == Init.
	Roots []FileNode

	// NodeID is populated for every Kind.
	NodeID models.NodeID

	// ParentID, Name, Path, DocID are populated for Add and Update.
	ParentID models.NodeID
	Name     string
	Path     string
	DocID    *models.DocID
}

// Mirror is the owned, by-ID tree a consumer maintains by folding
// TreeDeltas; O(1) per delta, as spec.md §4.11 requires.
type Mirror struct {
	nodes map[models.NodeID]*FileNode
}

// NewMirror returns an empty Mirror.
func NewMirror() *Mirror {
	return &Mirror{nodes: make(map[models.NodeID]*FileNode)}
}

// Apply folds delta into the mirror in place.
func (m *Mirror) Apply(delta TreeDelta) {
	switch delta.Kind {
	case Init:
		m.nodes = make(map[models.NodeID]*FileNode, len(delta.Roots))
		for i := range delta.Roots {
			node := delta.Roots[i]
			m.nodes[node.NodeID] = &node
		}
	case Add, Update:
		m.nodes[delta.NodeID] = &FileNode{
			NodeID:   delta.NodeID,
			ParentID: delta.ParentID,
			Name:     delta.Name,
			Path:     delta.Path,
			DocID:    delta.DocID,
		}
	case Remove:
		delete(m.nodes, delta.NodeID)
	}
}

// Get returns the node for id, if present.
func (m *Mirror) Get(id models.NodeID) (FileNode, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return FileNode{}, false
	}
	return *n, true
}

// Len returns the number of nodes currently mirrored.
func (m *Mirror) Len() int { return len(m.nodes) }

// Children returns every node whose ParentID is parent.
func (m *Mirror) Children(parent models.NodeID) []FileNode {
	var out []FileNode
	for _, n := range m.nodes {
		if n.ParentID == parent {
			out = append(out, *n)
		}
	}
	return out
}

// BuildInit constructs an Init delta from a full set of nodes. The
// Ledger Manager itself emits only Add, Update and Remove deltas and
// does not call it.
func BuildInit(nodes []FileNode) TreeDelta {
	return TreeDelta{Kind: Init, Roots: nodes}
}

// BuildAdd constructs an Add delta for a newly created node.
func BuildAdd(n FileNode) TreeDelta {
	return TreeDelta{Kind: Add, NodeID: n.NodeID, ParentID: n.ParentID, Name: n.Name, Path: n.Path, DocID: n.DocID}
}

// BuildRemove constructs a Remove delta.
func BuildRemove(id models.NodeID) TreeDelta {
	return TreeDelta{Kind: Remove, NodeID: id}
}

// BuildUpdate constructs an Update delta (covers rename and move: both
// change Name/Path/ParentID without changing NodeID or DocID).
func BuildUpdate(n FileNode) TreeDelta {
	return TreeDelta{Kind: Update, NodeID: n.NodeID, ParentID: n.ParentID, Name: n.Name, Path: n.Path, DocID: n.DocID}
}
