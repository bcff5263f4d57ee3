// Package identity manages a node's Ed25519 signing identity: the
// keypair persisted to identity.key and the short PeerID derived from
// its public key.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orneryd/deve-ledger/pkg/models"
)

// KeyPair is a node's Ed25519 identity. Private key material never
// crosses the sync protocol boundary; only signatures and the public
// key do.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate creates a fresh random identity.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: generate: %w", err)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// PeerID derives this identity's PeerID from its public key.
func (k KeyPair) PeerID() models.PeerID {
	return models.PeerIDFromPublicKey(k.Public)
}

// Sign signs message with the private key.
func (k KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.Private, message)
}

// Verify checks that signature is a valid Ed25519 signature of message
// under pub.
func Verify(pub ed25519.PublicKey, message, signature []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, message, signature)
}

// LoadOrGenerate loads the identity key from <dir>/identity.key,
// regenerating and overwriting the file if it is missing or malformed
// (spec.md §4.2: "if missing or malformed, regenerate and overwrite").
func LoadOrGenerate(dir string) (KeyPair, error) {
	path := filepath.Join(dir, "identity.key")
	raw, err := os.ReadFile(path)
	if err == nil {
		if kp, ok := decodeKeyPair(raw); ok {
			return kp, nil
		}
	}

	kp, err := Generate()
	if err != nil {
		return KeyPair{}, err
	}
	if err := os.WriteFile(path, encodeKeyPair(kp), 0o600); err != nil {
		return KeyPair{}, fmt.Errorf("identity: persist identity.key: %w", err)
	}
	return kp, nil
}

// encodeKeyPair writes the raw private key (which embeds the public
// key's seed in ed25519's 64-byte representation) followed by the
// public key, so decodeKeyPair can validate internal consistency.
func encodeKeyPair(kp KeyPair) []byte {
	out := make([]byte, 0, ed25519.PrivateKeySize+ed25519.PublicKeySize)
	out = append(out, kp.Private...)
	out = append(out, kp.Public...)
	return out
}

func decodeKeyPair(raw []byte) (KeyPair, bool) {
	if len(raw) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return KeyPair{}, false
	}
	priv := ed25519.PrivateKey(raw[:ed25519.PrivateKeySize])
	pub := ed25519.PublicKey(raw[ed25519.PrivateKeySize:])
	derived := priv.Public().(ed25519.PublicKey)
	if string(derived) != string(pub) {
		return KeyPair{}, false
	}
	return KeyPair{Public: pub, Private: priv}, true
}
