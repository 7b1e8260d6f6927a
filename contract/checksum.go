package contract

import (
	"fmt"
	"strings"
)

// Output descriptor checksum (BIP 380).

const (
	descInputCharset    = "0123456789()[],'/*abcdefgh@:$%{}IJKLMNOPQRSTUVWXYZ&+-.;<=>?!^_|~ijklmnopqrstuvwxyzABCDEFGH`#\"\\ "
	descChecksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
)

func descPolymod(c uint64, val uint64) uint64 {
	c0 := c >> 35
	c = ((c & 0x7ffffffff) << 5) ^ val
	if c0&1 != 0 {
		c ^= 0xf5dee51989
	}
	if c0&2 != 0 {
		c ^= 0xa9fdca3312
	}
	if c0&4 != 0 {
		c ^= 0x1bab10e32d
	}
	if c0&8 != 0 {
		c ^= 0x3706b1677a
	}
	if c0&16 != 0 {
		c ^= 0x644d626ffd
	}
	return c
}

func descriptorChecksum(desc string) (string, error) {
	c := uint64(1)
	cls := uint64(0)
	clsCount := 0

	for _, ch := range desc {
		pos := strings.IndexRune(descInputCharset, ch)
		if pos < 0 {
			return "", fmt.Errorf("%w: invalid character %q", ErrInvalidDescriptor, ch)
		}
		c = descPolymod(c, uint64(pos&31))
		cls = cls*3 + uint64(pos>>5)
		clsCount++
		if clsCount == 3 {
			c = descPolymod(c, cls)
			cls = 0
			clsCount = 0
		}
	}
	if clsCount > 0 {
		c = descPolymod(c, cls)
	}
	for j := 0; j < 8; j++ {
		c = descPolymod(c, 0)
	}
	c ^= 1

	out := make([]byte, 8)
	for j := 0; j < 8; j++ {
		out[j] = descChecksumCharset[(c>>(5*(7-j)))&31]
	}
	return string(out), nil
}

// addChecksum appends "#<checksum>".
func addChecksum(desc string) (string, error) {
	sum, err := descriptorChecksum(desc)
	if err != nil {
		return "", err
	}
	return desc + "#" + sum, nil
}

// stripChecksum verifies and removes a trailing checksum. A descriptor without
// one is accepted as is.
func stripChecksum(s string) (string, error) {
	desc, sum, ok := strings.Cut(s, "#")
	if !ok {
		return s, nil
	}
	want, err := descriptorChecksum(desc)
	if err != nil {
		return "", err
	}
	if sum != want {
		return "", fmt.Errorf("%w: checksum mismatch", ErrInvalidDescriptor)
	}
	return desc, nil
}
