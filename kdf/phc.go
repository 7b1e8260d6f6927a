package kdf

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	algScrypt = "scrypt"

	// Stored hashes may not cost more than 8x the production profile
	// (128 * r * 2^ln bytes, 128 MiB at ln=17, r=8).
	maxScryptMemory = 1 << 30
	maxScryptP      = 16
)

var b64 = base64.RawStdEncoding

// phcHash is the parsed form of "$scrypt$ln=17,r=8,p=1$<salt>$<digest>".
type phcHash struct {
	params params
	salt   []byte
	digest []byte
}

func (h phcHash) String() string {
	return fmt.Sprintf("$%s$ln=%d,r=%d,p=%d$%s$%s",
		algScrypt, h.params.LogN, h.params.R, h.params.P,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.digest))
}

func parsePHC(s string) (phcHash, error) {
	var h phcHash

	parts := strings.Split(s, "$")
	// leading "$" yields an empty first element
	if len(parts) != 5 || parts[0] != "" {
		return h, fmt.Errorf("%w: expected 4 fields", ErrMalformedHash)
	}
	if parts[1] != algScrypt {
		return h, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	seen := 0
	for _, kv := range strings.Split(parts[2], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return h, fmt.Errorf("%w: bad parameter %q", ErrMalformedHash, kv)
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return h, fmt.Errorf("%w: bad parameter %q", ErrMalformedHash, kv)
		}
		switch k {
		case "ln":
			if n > 30 {
				return h, fmt.Errorf("%w: ln out of range", ErrMalformedHash)
			}
			h.params.LogN = uint8(n)
		case "r":
			h.params.R = n
		case "p":
			h.params.P = n
		default:
			return h, fmt.Errorf("%w: unknown parameter %q", ErrMalformedHash, k)
		}
		seen++
	}
	if seen != 3 {
		return h, fmt.Errorf("%w: missing parameters", ErrMalformedHash)
	}
	if uint64(h.params.R)*128 > uint64(maxScryptMemory)>>h.params.LogN {
		return h, fmt.Errorf("%w: memory cost exceeds %d bytes", ErrMalformedHash, maxScryptMemory)
	}
	if h.params.P > maxScryptP {
		return h, fmt.Errorf("%w: parallelism %d exceeds %d", ErrMalformedHash, h.params.P, maxScryptP)
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[3]); err != nil || len(h.salt) == 0 {
		return h, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}
	if h.digest, err = b64.DecodeString(parts[4]); err != nil || len(h.digest) == 0 {
		return h, fmt.Errorf("%w: bad digest", ErrMalformedHash)
	}
	h.params.KeyLen = len(h.digest)
	return h, nil
}
