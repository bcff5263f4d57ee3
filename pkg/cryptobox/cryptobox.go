// Package cryptobox protects replicated ledger payloads with
// AES-256-GCM, the same authenticated-encryption primitive NornicDB's
// encryption package (pkg/encryption) uses for data at rest, applied
// here to individual sync messages instead of whole records.
package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/orneryd/deve-ledger/pkg/models"
)

const keySize = 32  // AES-256
const nonceSize = 12 // 96-bit GCM nonce

// Sentinel errors.
var (
	ErrInvalidKeyLength = errors.New("cryptobox: key must be 32 bytes")
	ErrDecryptionFailed = errors.New("cryptobox: decryption failed (bad key or tampered data)")
)

// RepoKey is the symmetric AEAD key used to encrypt LedgerEntry
// payloads exchanged between peers.
type RepoKey struct {
	raw   [keySize]byte
	gcm   cipher.AEAD
}

// GenerateRepoKey creates a fresh random 32-byte AES-256 key.
func GenerateRepoKey() (RepoKey, error) {
	var raw [keySize]byte
	if _, err := io.ReadFull(rand.Reader, raw[:]); err != nil {
		return RepoKey{}, fmt.Errorf("cryptobox: generate key: %w", err)
	}
	return newRepoKey(raw)
}

// RepoKeyFromBytes loads a RepoKey from raw key bytes.
func RepoKeyFromBytes(raw []byte) (RepoKey, error) {
	if len(raw) != keySize {
		return RepoKey{}, ErrInvalidKeyLength
	}
	var arr [keySize]byte
	copy(arr[:], raw)
	return newRepoKey(arr)
}

func newRepoKey(raw [keySize]byte) (RepoKey, error) {
	block, err := aes.NewCipher(raw[:])
	if err != nil {
		return RepoKey{}, fmt.Errorf("cryptobox: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return RepoKey{}, fmt.Errorf("cryptobox: new gcm: %w", err)
	}
	return RepoKey{raw: raw, gcm: gcm}, nil
}

// Bytes exports the raw key material for persistence.
func (k RepoKey) Bytes() []byte {
	out := make([]byte, keySize)
	copy(out, k.raw[:])
	return out
}

// EncryptedOp is the wire form of an encrypted LedgerEntry: doc_id and
// seq stay in the clear for routing and ordering, the entry body is
// AEAD-sealed.
type EncryptedOp struct {
	DocID      models.DocID `json:"doc_id"`
	Seq        uint64       `json:"seq"`
	Ciphertext []byte       `json:"ciphertext"`
	Nonce      []byte       `json:"nonce"`
}

// Encrypt serializes entry, seals it with a fresh random nonce, and
// stamps the result with seq (the caller's chosen ordering value — not
// necessarily entry.Seq, since snapshot-fallback messages carry the
// sender's max seq for the doc instead).
func (k RepoKey) Encrypt(entry models.LedgerEntry, seq uint64) (EncryptedOp, error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return EncryptedOp{}, fmt.Errorf("cryptobox: marshal entry: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedOp{}, fmt.Errorf("cryptobox: generate nonce: %w", err)
	}

	ciphertext := k.gcm.Seal(nil, nonce, plaintext, nil)
	return EncryptedOp{
		DocID:      entry.DocID,
		Seq:        seq,
		Ciphertext: ciphertext,
		Nonce:      nonce,
	}, nil
}

// Decrypt verifies and opens enc, returning the original LedgerEntry.
func (k RepoKey) Decrypt(enc EncryptedOp) (models.LedgerEntry, error) {
	if len(enc.Nonce) != nonceSize {
		return models.LedgerEntry{}, ErrDecryptionFailed
	}
	plaintext, err := k.gcm.Open(nil, enc.Nonce, enc.Ciphertext, nil)
	if err != nil {
		return models.LedgerEntry{}, ErrDecryptionFailed
	}
	var entry models.LedgerEntry
	if err := json.Unmarshal(plaintext, &entry); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("cryptobox: unmarshal entry: %w", err)
	}
	return entry, nil
}

// LoadOrGenerateRepoKey loads <dir>/repo.key, regenerating and
// overwriting it on missing or malformed contents (mirrors
// identity.LoadOrGenerate and spec.md §4.2's RepoKey lifecycle).
func LoadOrGenerateRepoKey(dir string) (RepoKey, error) {
	path := filepath.Join(dir, "repo.key")
	raw, err := os.ReadFile(path)
	if err == nil {
		if key, kerr := RepoKeyFromBytes(raw); kerr == nil {
			return key, nil
		}
	}

	key, err := GenerateRepoKey()
	if err != nil {
		return RepoKey{}, err
	}
	if err := os.WriteFile(path, key.Bytes(), 0o600); err != nil {
		return RepoKey{}, fmt.Errorf("cryptobox: persist repo.key: %w", err)
	}
	return key, nil
}
