package cryptobox

import (
	"path/filepath"
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateRepoKey()
	require.NoError(t, err)

	entry := models.LedgerEntry{
		DocID:       models.NewDocID(),
		Op:          models.Insert(0, "hello"),
		TimestampMs: 1234,
		PeerID:      "abc123def456",
		Seq:         1,
	}

	enc, err := key.Encrypt(entry, 1)
	require.NoError(t, err)
	assert.Equal(t, entry.DocID, enc.DocID)
	assert.Equal(t, uint64(1), enc.Seq)

	decoded, err := key.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestDecryptFailsWithWrongKey(t *testing.T) {
	key1, err := GenerateRepoKey()
	require.NoError(t, err)
	key2, err := GenerateRepoKey()
	require.NoError(t, err)

	entry := models.LedgerEntry{DocID: models.NewDocID(), Op: models.Insert(0, "x")}
	enc, err := key1.Encrypt(entry, 1)
	require.NoError(t, err)

	_, err = key2.Decrypt(enc)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptFailsOnTamperedCiphertext(t *testing.T) {
	key, err := GenerateRepoKey()
	require.NoError(t, err)

	entry := models.LedgerEntry{DocID: models.NewDocID(), Op: models.Insert(0, "x")}
	enc, err := key.Encrypt(entry, 1)
	require.NoError(t, err)

	enc.Ciphertext[0] ^= 0xFF
	_, err = key.Decrypt(enc)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestRepoKeyFromBytesRejectsWrongLength(t *testing.T) {
	_, err := RepoKeyFromBytes([]byte("too-short"))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestLoadOrGenerateRepoKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateRepoKey(dir)
	require.NoError(t, err)
	second, err := LoadOrGenerateRepoKey(dir)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())
	assert.FileExists(t, filepath.Join(dir, "repo.key"))
}
