// Package kdf turns a user passphrase into a verifiable password hash and into
// the symmetric key that seals the wallet mnemonic.
package kdf

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/scrypt"
)

var (
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")
	ErrMalformedHash       = errors.New("malformed password hash")
)

const (
	saltLen = 16

	// encryptionKeyInfo is the HKDF context string for the mnemonic encryption key.
	encryptionKeyInfo = "ENCRYPTION_KEY"
)

// PasswordHash is a self-describing PHC string. It only allows verification.
type PasswordHash string

// HashPassphrase hashes passphrase with scrypt under a fresh random salt.
func HashPassphrase(rng io.Reader, passphrase []byte, profile Profile) (PasswordHash, error) {
	p, err := profile.params()
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rng, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest, err := scrypt.Key(passphrase, salt, 1<<p.LogN, p.R, p.P, p.KeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return PasswordHash(phcHash{params: p, salt: salt, digest: digest}.String()), nil
}

// VerifyPassphrase recomputes scrypt with the parameters stored in the hash.
func VerifyPassphrase(passphrase []byte, stored PasswordHash) error {
	h, err := parsePHC(string(stored))
	if err != nil {
		return err
	}

	digest, err := scrypt.Key(passphrase, h.salt, 1<<h.params.LogN, h.params.R, h.params.P, h.params.KeyLen)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	defer clear(digest)

	if subtle.ConstantTimeCompare(digest, h.digest) != 1 {
		return ErrIncorrectPassphrase
	}
	return nil
}

// DeriveEncryptionKey is HKDF-SHA256(ikm=password, salt=salt, info="ENCRYPTION_KEY").
// The result is deterministic in its inputs; uniqueness comes from the salt.
func DeriveEncryptionKey(password []byte, salt []byte) [32]byte {
	var key [32]byte
	r := hkdf.New(sha256.New, password, salt, []byte(encryptionKeyInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		// 32 bytes is far below the 255*32 HKDF-SHA256 output limit
		panic(fmt.Sprintf("hkdf: %v", err))
	}
	return key
}
