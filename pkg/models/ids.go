// Package models defines the core data types shared by the ledger, sync,
// and merge engines: document/node identifiers, the operation log entry
// shape, and the logical-clock primitives layered on top of them.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// DocID is the stable 128-bit identity of a document. It survives
// renames; only delete_doc destroys it.
type DocID uuid.UUID

// NewDocID allocates a fresh random DocID.
func NewDocID() DocID {
	return DocID(uuid.New())
}

// DocIDFromString parses a canonical UUID string into a DocID.
func DocIDFromString(s string) (DocID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DocID{}, err
	}
	return DocID(u), nil
}

func (d DocID) String() string { return uuid.UUID(d).String() }

// Bytes returns the 16-byte big-endian encoding used as a store key.
func (d DocID) Bytes() []byte {
	b := uuid.UUID(d)
	return b[:]
}

// NodeID is the stable identity of a file-tree node (file or folder).
// Distinct from DocID: exactly one DocID maps to one file NodeID.
type NodeID uuid.UUID

// NewNodeID allocates a fresh random NodeID.
func NewNodeID() NodeID { return NodeID(uuid.New()) }

func (n NodeID) String() string { return uuid.UUID(n).String() }

func (n NodeID) Bytes() []byte {
	b := uuid.UUID(n)
	return b[:]
}

// RepoID identifies a single repository (local or shadow).
type RepoID uuid.UUID

func NewRepoID() RepoID { return RepoID(uuid.New()) }

func (r RepoID) String() string { return uuid.UUID(r).String() }

// PeerID is a short, filesystem-safe fingerprint of a node's Ed25519
// public key: the first 12 hex characters of SHA-256(pubkey).
type PeerID string

// PeerIDFromPublicKey derives the PeerID for a given raw public key.
func PeerIDFromPublicKey(pub []byte) PeerID {
	sum := sha256.Sum256(pub)
	return PeerID(hex.EncodeToString(sum[:])[:12])
}

func (p PeerID) String() string { return string(p) }

// invalidFilenameChars mirrors spec.md's sanitization table for shadow
// store directory names: / \ : * ? " < > |
var invalidFilenameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// Filename returns a sanitized form of the PeerID safe for use as a
// directory name on any supported filesystem.
func (p PeerID) Filename() string {
	return invalidFilenameChars.Replace(string(p))
}

// FileNodeID is the platform-native file identity (device+inode on
// POSIX, volume+file-index on Windows) packed into a 128-bit token.
// Used only to detect rename-without-content-change.
type FileNodeID struct {
	Hi uint64
	Lo uint64
}

// NewFileNodeID packs a device/volume id and an inode/file-index into
// a FileNodeID.
func NewFileNodeID(device, inode uint64) FileNodeID {
	return FileNodeID{Hi: device, Lo: inode}
}

func (f FileNodeID) Bytes() []byte {
	b := make([]byte, 16)
	putUint64(b[0:8], f.Hi)
	putUint64(b[8:16], f.Lo)
	return b
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
