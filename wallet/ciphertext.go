package wallet

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lendhub/lendhub-core/kdf"
	prt "github.com/lendhub/lendhub-core/protocol"

	"golang.org/x/crypto/chacha20poly1305"
)

// fixedNonce is safe only because every key seals exactly one plaintext: keys
// come from DeriveEncryptionKey over a salt drawn fresh in sealMnemonic.
var fixedNonce = []byte("unique nonce")

const ciphertextSeparator = "$"

// MnemonicCiphertext is the persisted, encrypted seed phrase.
type MnemonicCiphertext struct {
	Salt       prt.Salt
	Ciphertext []byte
}

// Encrypt seals mnemonic with ChaCha20-Poly1305 under the fixed nonce. Never
// call it twice with the same key.
func Encrypt(mnemonic string, key [32]byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return aead.Seal(nil, fixedNonce, []byte(mnemonic), nil), nil
}

// Decrypt opens a sealed mnemonic. A wrong key and a corrupted ciphertext both
// fail the tag check and return ErrIncorrectPassphrase.
func Decrypt(ciphertext []byte, key [32]byte) (string, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, fixedNonce, ciphertext, nil)
	if err != nil {
		return "", ErrIncorrectPassphrase
	}
	defer clear(plaintext)

	if !utf8.Valid(plaintext) {
		return "", ErrIncorrectPassphrase
	}
	return string(plaintext), nil
}

// sealMnemonic is the only path that encrypts a mnemonic. It draws a new salt
// for every call, so the derived key is never reused for a second message.
func sealMnemonic(rng io.Reader, mnemonic string, passphrase []byte) (*MnemonicCiphertext, error) {
	ct := &MnemonicCiphertext{}
	if _, err := io.ReadFull(rng, ct.Salt[:]); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := kdf.DeriveEncryptionKey(passphrase, ct.Salt[:])
	defer clear(key[:])

	sealed, err := Encrypt(mnemonic, key)
	if err != nil {
		return nil, err
	}
	ct.Ciphertext = sealed
	return ct, nil
}

func (c *MnemonicCiphertext) open(passphrase []byte) (string, error) {
	key := kdf.DeriveEncryptionKey(passphrase, c.Salt[:])
	defer clear(key[:])
	return Decrypt(c.Ciphertext, key)
}

// Serialize renders hex(salt) + "$" + hex(ciphertext).
func (c *MnemonicCiphertext) Serialize() string {
	return hex.EncodeToString(c.Salt[:]) + ciphertextSeparator + hex.EncodeToString(c.Ciphertext)
}

func (c *MnemonicCiphertext) String() string {
	return c.Serialize()
}

// ParseMnemonicCiphertext is the inverse of Serialize and fails closed.
func ParseMnemonicCiphertext(s string) (*MnemonicCiphertext, error) {
	saltHex, ctHex, ok := strings.Cut(strings.TrimSpace(s), ciphertextSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrMalformedCiphertext)
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedCiphertext, err)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt length %d", ErrMalformedCiphertext, len(salt))
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", ErrMalformedCiphertext, err)
	}
	if len(ciphertext) <= chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrMalformedCiphertext)
	}

	c := &MnemonicCiphertext{Ciphertext: ciphertext}
	copy(c.Salt[:], salt)
	return c, nil
}
