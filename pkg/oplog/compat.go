package oplog

import (
	"encoding/json"
	"fmt"

	"github.com/orneryd/deve-ledger/pkg/models"
)

// legacyEntry mirrors the pre-seq LedgerEntry shape: positions carried as
// plain ints, content as a bare string, and no peer/seq fields — the
// ledger used to be single-writer before peer replication existed.
type legacyEntry struct {
	DocID       models.DocID `json:"doc_id"`
	Op          legacyOp     `json:"op"`
	TimestampMs int64        `json:"timestamp"`
}

type legacyOp struct {
	Type    string `json:"type"`
	Pos     int    `json:"pos"`
	Len     int    `json:"len"`
	Content string `json:"content"`
}

// decodeEntry decodes a stored payload into the current LedgerEntry
// shape, transparently upgrading the legacy shape if that's what is on
// disk. Callers that re-save a legacy entry always write back the
// current shape (encodeEntry only ever produces current-shape bytes).
func decodeEntry(raw []byte) (models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := json.Unmarshal(raw, &entry); err == nil && entry.PeerID != "" {
		return entry, nil
	}

	var legacy legacyEntry
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("oplog: corrupted ledger entry: %w", err)
	}

	var op models.Op
	switch legacy.Op.Type {
	case "insert", "Insert":
		op = models.Insert(uint32(legacy.Op.Pos), legacy.Op.Content)
	case "delete", "Delete":
		op = models.Delete(uint32(legacy.Op.Pos), uint32(legacy.Op.Len))
	default:
		return models.LedgerEntry{}, fmt.Errorf("oplog: unknown legacy op type %q", legacy.Op.Type)
	}

	return models.LedgerEntry{
		DocID:       legacy.DocID,
		Op:          op,
		TimestampMs: legacy.TimestampMs,
		PeerID:      "legacy",
		Seq:         0,
	}, nil
}
