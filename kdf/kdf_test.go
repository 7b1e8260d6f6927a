package kdf

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassphrase(t *testing.T) {
	h, err := HashPassphrase(rand.Reader, []byte("correct horse"), ProfileFastTest)
	if err != nil {
		t.Fatalf("HashPassphrase: %v", err)
	}
	if !strings.HasPrefix(string(h), "$scrypt$ln=4,r=8,p=1$") {
		t.Fatalf("unexpected hash format: %s", h)
	}

	if err := VerifyPassphrase([]byte("correct horse"), h); err != nil {
		t.Errorf("VerifyPassphrase with right passphrase: %v", err)
	}
	if err := VerifyPassphrase([]byte("wrong horse"), h); !errors.Is(err, ErrIncorrectPassphrase) {
		t.Errorf("expected ErrIncorrectPassphrase, got %v", err)
	}
}

func TestHashPassphraseFreshSalt(t *testing.T) {
	h1, err := HashPassphrase(rand.Reader, []byte("pw"), ProfileFastTest)
	if err != nil {
		t.Fatalf("HashPassphrase: %v", err)
	}
	h2, err := HashPassphrase(rand.Reader, []byte("pw"), ProfileFastTest)
	if err != nil {
		t.Fatalf("HashPassphrase: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same passphrase must differ by salt")
	}
}

func TestHashPassphraseUnknownProfile(t *testing.T) {
	if _, err := HashPassphrase(rand.Reader, []byte("pw"), Profile(0)); err == nil {
		t.Error("expected error for zero profile")
	}
}

func TestVerifyPassphraseMalformed(t *testing.T) {
	cases := []PasswordHash{
		"",
		"plain",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdA$ZGln",
		"$scrypt$ln=4,r=8$c2FsdA$ZGlnZXN0",
		"$scrypt$ln=4,r=8,p=1$!!$ZGlnZXN0",
		"$scrypt$ln=99,r=8,p=1$c2FsdA$ZGlnZXN0",
	}
	for _, c := range cases {
		if err := VerifyPassphrase([]byte("pw"), c); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("VerifyPassphrase(%q): expected ErrMalformedHash, got %v", c, err)
		}
	}
}

func TestDeriveEncryptionKey(t *testing.T) {
	salt := []byte("0123456789abcdef0123456789abcdef")
	k1 := DeriveEncryptionKey([]byte("foo"), salt)
	k2 := DeriveEncryptionKey([]byte("foo"), salt)
	if k1 != k2 {
		t.Error("key derivation must be deterministic")
	}

	k3 := DeriveEncryptionKey([]byte("foo"), []byte("fedcba9876543210fedcba9876543210"))
	if k1 == k3 {
		t.Error("different salts must give different keys")
	}
	k4 := DeriveEncryptionKey([]byte("bar"), salt)
	if k1 == k4 {
		t.Error("different passwords must give different keys")
	}
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("production")
	if err != nil || p != ProfileProduction {
		t.Errorf("ParseProfile(production) = %v, %v", p, err)
	}
	p, err = ParseProfile("fast-test")
	if err != nil || p != ProfileFastTest {
		t.Errorf("ParseProfile(fast-test) = %v, %v", p, err)
	}
	if _, err := ParseProfile(""); err == nil {
		t.Error("empty profile must not default")
	}
}

func TestVerifyPassphraseRejectsExcessiveCost(t *testing.T) {
	cases := []PasswordHash{
		"$scrypt$ln=30,r=8,p=1$c2FsdA$ZGlnZXN0",
		"$scrypt$ln=21,r=8,p=1$c2FsdA$ZGlnZXN0",
		"$scrypt$ln=4,r=1073741824,p=1$c2FsdA$ZGlnZXN0",
		"$scrypt$ln=4,r=8,p=1000$c2FsdA$ZGlnZXN0",
	}
	for _, c := range cases {
		if err := VerifyPassphrase([]byte("pw"), c); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("VerifyPassphrase(%q): expected ErrMalformedHash, got %v", c, err)
		}
	}

	// the production profile itself stays within bounds
	if _, err := parsePHC("$scrypt$ln=17,r=8,p=1$c2FsdA$ZGlnZXN0"); err != nil {
		t.Errorf("production parameters rejected: %v", err)
	}
}
