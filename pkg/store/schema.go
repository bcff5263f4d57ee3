package store

// Table tags. Single-byte prefixes, same trick as NornicDB's
// node/edge/label key prefixes in pkg/storage/badger.go — cheap to
// encode, trivial to prefix-scan.
const (
	TableDocIDToPath   byte = 0x01 // unique: DocID -> path string
	TablePathToDocID   byte = 0x02 // unique: path string -> DocID (inverse index)
	TableInodeToDocID  byte = 0x03 // unique: FileNodeID -> DocID
	TableNodeIDToMeta  byte = 0x04 // unique: NodeID -> tree node metadata
	TablePathToNodeID  byte = 0x05 // unique: path -> NodeID
	TableInodeToNodeID byte = 0x06 // unique: FileNodeID -> NodeID

	TableLedgerOps    byte = 0x10 // unique: GlobalSeq (u64 BE) -> LedgerEntry bytes
	TableDocOps       byte = 0x11 // multimap: DocID -> GlobalSeq
	TableSnapshotIdx  byte = 0x12 // multimap: DocID -> GlobalSeq
	TableSnapshotData byte = 0x13 // unique: GlobalSeq (u64 BE) -> content bytes

	TableRepoMetadata byte = 0x20 // unique: single entry

	TableStagedFiles         byte = 0x30 // unique: path -> timestamp
	TableCommits             byte = 0x31 // unique: commit id -> JSON CommitRecord
	TableCommitsOrder        byte = 0x32 // unique: ordinal (u64 BE) -> commit id
	TableCommitSnapshots     byte = 0x33 // unique: DocID -> content
	TableCommitSnapshotPaths byte = 0x34 // unique: DocID -> path at commit time
)

// repoMetadataKey is the sole key used in the single-entry
// TableRepoMetadata table.
var repoMetadataKey = []byte{0}
