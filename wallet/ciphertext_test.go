package wallet

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

const testMnemonic = "since burden argue crop curve window duck bird happy race episode sand"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		t.Fatal(err)
	}

	for _, m := range []string{testMnemonic, "", "ünïcödé words"} {
		ct, err := Encrypt(m, key)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		got, err := Decrypt(ct, key)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got != m {
			t.Errorf("round trip mismatch: got %q, want %q", got, m)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	var k1, k2 [32]byte
	k2[0] = 1

	ct, err := Encrypt(testMnemonic, k1)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(ct, k2); !errors.Is(err, ErrIncorrectPassphrase) {
		t.Errorf("expected ErrIncorrectPassphrase, got %v", err)
	}
}

func TestSealMnemonicFreshSalt(t *testing.T) {
	a, err := sealMnemonic(rand.Reader, testMnemonic, []byte("foo"))
	if err != nil {
		t.Fatalf("sealMnemonic: %v", err)
	}
	b, err := sealMnemonic(rand.Reader, testMnemonic, []byte("foo"))
	if err != nil {
		t.Fatalf("sealMnemonic: %v", err)
	}
	if a.Salt == b.Salt {
		t.Error("salt must be fresh for every sealing")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Error("ciphertexts under different salts must differ")
	}
}

func TestSealMnemonicShortRandom(t *testing.T) {
	if _, err := sealMnemonic(bytes.NewReader(make([]byte, 8)), testMnemonic, []byte("foo")); err == nil {
		t.Error("expected error when rng runs dry")
	}
}

func TestSerializeParse(t *testing.T) {
	ct, err := sealMnemonic(rand.Reader, testMnemonic, []byte("foo"))
	if err != nil {
		t.Fatalf("sealMnemonic: %v", err)
	}

	s := ct.Serialize()
	if strings.Count(s, "$") != 1 {
		t.Fatalf("unexpected format %q", s)
	}

	parsed, err := ParseMnemonicCiphertext(s)
	if err != nil {
		t.Fatalf("ParseMnemonicCiphertext: %v", err)
	}
	if parsed.Salt != ct.Salt {
		t.Error("salt changed across serialize/parse")
	}
	if !bytes.Equal(parsed.Ciphertext, ct.Ciphertext) {
		t.Error("ciphertext changed across serialize/parse")
	}
}

func TestParseMnemonicCiphertextMalformed(t *testing.T) {
	good, err := sealMnemonic(rand.Reader, testMnemonic, []byte("foo"))
	if err != nil {
		t.Fatal(err)
	}
	saltHex, ctHex, _ := strings.Cut(good.Serialize(), "$")

	cases := map[string]string{
		"no separator":  saltHex + ctHex,
		"short salt":    saltHex[2:] + "$" + ctHex,
		"long salt":     saltHex + "00$" + ctHex,
		"bad salt hex":  "zz" + saltHex[2:] + "$" + ctHex,
		"bad ct hex":    saltHex + "$" + ctHex + "g",
		"empty ct":      saltHex + "$",
		"extra field":   saltHex + "$" + ctHex + "$00",
		"empty string":  "",
		"only a dollar": "$",
	}
	for name, in := range cases {
		if _, err := ParseMnemonicCiphertext(in); !errors.Is(err, ErrMalformedCiphertext) {
			t.Errorf("%s: expected ErrMalformedCiphertext, got %v", name, err)
		}
	}
}

func TestTamperDetection(t *testing.T) {
	passphrase := []byte("foo")
	ct, err := sealMnemonic(rand.Reader, testMnemonic, passphrase)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(ct.Ciphertext)*8; i++ {
		tampered := &MnemonicCiphertext{Salt: ct.Salt, Ciphertext: bytes.Clone(ct.Ciphertext)}
		tampered.Ciphertext[i/8] ^= 1 << (i % 8)
		if m, err := tampered.open(passphrase); err == nil {
			t.Fatalf("bit %d flipped in ciphertext decrypted to %q", i, m)
		}
	}

	for i := 0; i < len(ct.Salt)*8; i++ {
		tampered := &MnemonicCiphertext{Salt: ct.Salt, Ciphertext: ct.Ciphertext}
		tampered.Salt[i/8] ^= 1 << (i % 8)
		if _, err := FromCiphertext(tampered, passphrase, "regtest"); !errors.Is(err, ErrIncorrectPassphrase) {
			t.Fatalf("bit %d flipped in salt: expected ErrIncorrectPassphrase, got %v", i, err)
		}
	}
}
