package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndSign(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	msg := []byte("hello sync")
	sig := kp.Sign(msg)
	assert.True(t, Verify(kp.Public, msg, sig))
	assert.False(t, Verify(kp.Public, []byte("tampered"), sig))
}

func TestPeerIDIsTwelveHexChars(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	id := kp.PeerID()
	assert.Len(t, string(id), 12)
}

func TestLoadOrGenerateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerate(dir)
	require.NoError(t, err)

	second, err := LoadOrGenerate(dir)
	require.NoError(t, err)

	assert.Equal(t, first.PeerID(), second.PeerID())
	assert.Equal(t, first.Public, second.Public)
}

func TestLoadOrGenerateRegeneratesOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.key")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	kp, err := LoadOrGenerate(dir)
	require.NoError(t, err)
	assert.Len(t, kp.Public, 32)
}
