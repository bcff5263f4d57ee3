// Package protocol defines the wire envelope exchanged between a
// running core and a transport collaborator: two tagged-union message
// types, encoded as a Type discriminant plus a typed payload, using
// encoding/json (no codegen). The core only encodes/decodes; framing,
// auth, and compression belong to the transport (pkg/transport).
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/orneryd/deve-ledger/pkg/cryptobox"
	"github.com/orneryd/deve-ledger/pkg/merge"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/sourcectl"
	"github.com/orneryd/deve-ledger/pkg/treedelta"
)

// ClientMessage is the envelope for every client-originated message.
// Exactly one of the payload fields is populated, selected by Type.
type ClientMessage struct {
	Type string `json:"type"`

	SyncHello           *SyncHelloPayload           `json:"sync_hello,omitempty"`
	SyncRequest         *SyncRequestPayload         `json:"sync_request,omitempty"`
	SyncSnapshotRequest *SyncSnapshotRequestPayload `json:"sync_snapshot_request,omitempty"`
	SyncPush            *SyncPushPayload            `json:"sync_push,omitempty"`
	SyncPushSnapshot    *SyncPushSnapshotPayload    `json:"sync_push_snapshot,omitempty"`
	Edit                *EditPayload                `json:"edit,omitempty"`
	RequestHistory      *DocIDPayload               `json:"request_history,omitempty"`
	OpenDoc             *DocIDPayload               `json:"open_doc,omitempty"`
	CreateDoc           *CreateDocPayload           `json:"create_doc,omitempty"`
	RenameDoc           *RenamePayload              `json:"rename_doc,omitempty"`
	DeleteDoc           *PathPayload                `json:"delete_doc,omitempty"`
	CopyDoc             *CopyMovePayload            `json:"copy_doc,omitempty"`
	MoveDoc             *CopyMovePayload            `json:"move_doc,omitempty"`
	Search              *SearchPayload              `json:"search,omitempty"`
	SetSyncMode         *SyncModePayload            `json:"set_sync_mode,omitempty"`
	ListShadows         *struct{}                   `json:"list_shadows,omitempty"`
	ListRepos           *struct{}                   `json:"list_repos,omitempty"`
	SwitchBranch        *SwitchBranchPayload        `json:"switch_branch,omitempty"`
	SwitchRepo          *SwitchRepoPayload          `json:"switch_repo,omitempty"`
	DeletePeer          *PeerIDPayload              `json:"delete_peer,omitempty"`
	StageFiles          *PathsPayload               `json:"stage_files,omitempty"`
	UnstageFiles        *PathsPayload               `json:"unstage_files,omitempty"`
	Commit              *CommitPayload              `json:"commit,omitempty"`
	GetCommitHistory    *LimitPayload               `json:"get_commit_history,omitempty"`
	MergePeer           *MergePeerPayload           `json:"merge_peer,omitempty"`
	GetDocDiff          *PathPayload                `json:"get_doc_diff,omitempty"`
	DiscardFile         *PathPayload                `json:"discard_file,omitempty"`
}

// ServerMessage is the envelope for every server-originated message.
type ServerMessage struct {
	Type string `json:"type"`

	Ack              *AckPayload                 `json:"ack,omitempty"`
	SyncHello        *SyncHelloPayload           `json:"sync_hello,omitempty"`
	SyncRequest      *SyncRequestPayload         `json:"sync_request,omitempty"`
	SyncPush         *SyncPushPayload            `json:"sync_push,omitempty"`
	SyncPushSnapshot *SyncPushSnapshotPayload    `json:"sync_push_snapshot,omitempty"`
	NewOp            *NewOpPayload               `json:"new_op,omitempty"`
	Snapshot         *SnapshotPayload            `json:"snapshot,omitempty"`
	History          *HistoryPayload             `json:"history,omitempty"`
	DocList          *DocListPayload             `json:"doc_list,omitempty"`
	TreeUpdate       *treedelta.TreeDelta        `json:"tree_update,omitempty"`
	ChangesList      *ChangesListPayload         `json:"changes_list,omitempty"`
	CommitAck        *models.CommitRecord        `json:"commit_ack,omitempty"`
	CommitHistory    *CommitHistoryPayload       `json:"commit_history,omitempty"`
	DocDiff          *DocDiffPayload             `json:"doc_diff,omitempty"`
	KeyProvide       *KeyProvidePayload          `json:"key_provide,omitempty"`
	KeyDenied        *ReasonPayload              `json:"key_denied,omitempty"`
	MergeComplete    *MergeCompletePayload       `json:"merge_complete,omitempty"`
	PendingOpsInfo   *PendingOpsInfoPayload      `json:"pending_ops_info,omitempty"`
	Error            *ErrorPayload               `json:"error,omitempty"`
}

// --- client payloads ---

type SyncHelloPayload struct {
	PeerID    models.PeerID `json:"peer_id"`
	PubKey    []byte        `json:"pub_key"`
	Signature []byte        `json:"signature"`
	Vector    []VectorEntry `json:"vector"`
}

// VectorEntry mirrors identity.VectorEntry at the wire boundary; kept
// distinct so protocol has no import-time dependency on pkg/identity.
type VectorEntry struct {
	Peer models.PeerID `json:"peer"`
	Seq  uint64        `json:"seq"`
}

type SeqRange struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

type SyncRequestPayload struct {
	Requests []PeerRange `json:"requests"`
}

type PeerRange struct {
	PeerID models.PeerID `json:"peer_id"`
	Range  SeqRange      `json:"range"`
}

type SyncSnapshotRequestPayload struct {
	PeerID models.PeerID  `json:"peer_id"`
	RepoID models.RepoID  `json:"repo_id"`
}

type SyncPushPayload struct {
	Ops []cryptobox.EncryptedOp `json:"ops"`
}

type SyncPushSnapshotPayload struct {
	PeerID models.PeerID           `json:"peer_id"`
	RepoID models.RepoID           `json:"repo_id"`
	Ops    []cryptobox.EncryptedOp `json:"ops"`
}

type EditPayload struct {
	DocID    models.DocID `json:"doc_id"`
	Op       models.Op    `json:"op"`
	ClientID string       `json:"client_id"`
}

type DocIDPayload struct {
	DocID models.DocID `json:"doc_id"`
}

type CreateDocPayload struct {
	Name string `json:"name"`
}

type RenamePayload struct {
	Old string `json:"old"`
	New string `json:"new"`
}

type PathPayload struct {
	Path string `json:"path"`
}

type PathsPayload struct {
	Paths []string `json:"paths"`
}

type CopyMovePayload struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

type SearchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SyncModePayload struct {
	Mode string `json:"mode"` // "auto" | "manual"
}

type SwitchBranchPayload struct {
	PeerID *models.PeerID `json:"peer_id,omitempty"`
}

type SwitchRepoPayload struct {
	Name string `json:"name"`
}

type PeerIDPayload struct {
	PeerID models.PeerID `json:"peer_id"`
}

type CommitPayload struct {
	Message string `json:"message"`
}

type LimitPayload struct {
	Limit int `json:"limit"`
}

type MergePeerPayload struct {
	PeerID models.PeerID `json:"peer_id"`
	DocID  models.DocID  `json:"doc_id"`
}

// --- server payloads ---

type AckPayload struct {
	DocID models.DocID `json:"doc_id"`
	Seq   uint64       `json:"seq"`
}

type NewOpPayload struct {
	DocID    models.DocID `json:"doc_id"`
	Op       models.Op    `json:"op"`
	Seq      uint64       `json:"seq"`
	ClientID string       `json:"client_id"`
}

type SnapshotPayload struct {
	DocID    models.DocID `json:"doc_id"`
	Content  string       `json:"content"`
	BaseSeq  uint64       `json:"base_seq"`
	Version  uint64       `json:"version"`
	DeltaOps []models.Op  `json:"delta_ops"`
}

type HistoryPayload struct {
	DocID models.DocID        `json:"doc_id"`
	Ops   []models.LedgerEntry `json:"ops"`
}

type DocListPayload struct {
	Docs []DocListEntry `json:"docs"`
}

type DocListEntry struct {
	DocID models.DocID `json:"doc_id"`
	Path  string       `json:"path"`
}

type ChangesListPayload struct {
	Staged   []sourcectl.Change `json:"staged"`
	Unstaged []sourcectl.Change `json:"unstaged"`
}

type CommitHistoryPayload struct {
	Commits []models.CommitRecord `json:"commits"`
}

type DocDiffPayload struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

type KeyProvidePayload struct {
	RepoKey []byte `json:"repo_key"`
}

type ReasonPayload struct {
	Reason string `json:"reason"`
}

type MergeCompletePayload struct {
	MergedCount int `json:"merged_count"`
}

type PendingOpsInfoPayload struct {
	Count     int                  `json:"count"`
	Previews  []models.LedgerEntry `json:"previews"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// MergeResultPayload carries a merge.Result over the wire for
// MergePeer's response path; kept separate from ServerMessage's fixed
// field set since a merge can resolve cleanly or need conflict review.
type MergeResultPayload struct {
	Merged    bool               `json:"merged"`
	Content   string             `json:"content,omitempty"`
	Conflicts []merge.ConflictHunk `json:"conflicts,omitempty"`
}

// Encode marshals msg with encoding/json.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeClientMessage unmarshals raw into a ClientMessage.
func DecodeClientMessage(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("protocol: decode client message: %w", err)
	}
	return msg, nil
}

// DecodeServerMessage unmarshals raw into a ServerMessage.
func DecodeServerMessage(raw []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("protocol: decode server message: %w", err)
	}
	return msg, nil
}
