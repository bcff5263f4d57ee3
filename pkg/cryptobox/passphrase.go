package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Iterations follows NornicDB's KeyDerivationConfig default
// (OWASP 2023 recommendation for PBKDF2-HMAC-SHA256).
const pbkdf2Iterations = 600_000

// WrapWithPassphrase encrypts a RepoKey's raw bytes under a key derived
// from passphrase+salt via PBKDF2, for environments without an OS
// keyring. The returned blob is salt || nonce || ciphertext.
func WrapWithPassphrase(key RepoKey, passphrase string, salt []byte) ([]byte, error) {
	derived := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: wrap cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: wrap gcm: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptobox: wrap nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, key.Bytes(), nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// UnwrapWithPassphrase reverses WrapWithPassphrase given the same salt
// length used to produce blob.
func UnwrapWithPassphrase(blob []byte, passphrase string, saltLen int) (RepoKey, error) {
	if len(blob) < saltLen+nonceSize {
		return RepoKey{}, ErrDecryptionFailed
	}
	salt := blob[:saltLen]
	nonce := blob[saltLen : saltLen+nonceSize]
	ciphertext := blob[saltLen+nonceSize:]

	derived := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return RepoKey{}, fmt.Errorf("cryptobox: unwrap cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return RepoKey{}, fmt.Errorf("cryptobox: unwrap gcm: %w", err)
	}
	raw, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return RepoKey{}, ErrDecryptionFailed
	}
	return RepoKeyFromBytes(raw)
}
