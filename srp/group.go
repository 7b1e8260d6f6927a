// Package srp implements SRP-6a registration and mutual login authentication
// (RFC 5054 2048-bit group, SHA-256).
package srp

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/lendhub/lendhub-core/common/utils"
)

var (
	ErrProtocol                   = errors.New("srp protocol violation")
	ErrServerAuthenticationFailed = errors.New("server authentication failed")
	ErrClientAuthenticationFailed = errors.New("client authentication failed")
)

const (
	SaltSize     = 16
	ephemeralLen = 64
)

const rfc5054N2048 = `
AC6BDB41 324A9A9B F166DE5E 1389582F AF72B665 1987EE07 FC319294
3DB56050 A37329CB B4A099ED 8193E075 7767A13D D52312AB 4B03310D
CD7F48A9 DA04FD50 E8083969 EDB767B0 CF609517 9A163AB3 661A05FB
D5FAAAE8 2918A996 2F0B93B8 55F97993 EC975EEA A80D740A DBF4FF74
7359D041 D5C33EA7 1D281E44 6B14773B CA97B43A 23FB8016 76BD207A
436C6481 F1D2B907 8717461A 5B9D32E6 88F87748 544523B5 24B0D57D
5EA77A27 75D2ECFA 032CFBDB F52FB378 61602790 04E57AE6 AF874E73
03CE5329 9CCC041C 7BC308D8 2A5698F3 A8D0C382 71AE35F8 E9DBFBB6
94B5C803 D89F7AE4 35DE236D 525F5475 9B65E372 FCD68EF2 0FA7111F
9E4AFF73`

// Group is a safe-prime group with generator g and multiplier k = H(N | PAD(g)).
type Group struct {
	N *big.Int
	G *big.Int

	k    *big.Int
	size int
}

// Group2048 is the RFC 5054 2048-bit group with g = 2.
var Group2048 = newGroup(rfc5054N2048, 2)

func newGroup(nHex string, g int64) *Group {
	n, ok := new(big.Int).SetString(strings.Join(strings.Fields(nHex), ""), 16)
	if !ok {
		panic("srp: bad group modulus")
	}
	grp := &Group{
		N:    n,
		G:    big.NewInt(g),
		size: (n.BitLen() + 7) / 8,
	}
	grp.k = new(big.Int).SetBytes(utils.Sha256(n.Bytes(), grp.pad(grp.G)))
	return grp
}

// pad left-pads x to the byte length of N.
func (g *Group) pad(x *big.Int) []byte {
	b := x.Bytes()
	if len(b) >= g.size {
		return b
	}
	out := make([]byte, g.size)
	copy(out[g.size-len(b):], b)
	return out
}

func (g *Group) exp(base, e *big.Int) *big.Int {
	return new(big.Int).Exp(base, e, g.N)
}

// checkEphemeral rejects public ephemerals that are zero mod N or out of range.
func (g *Group) checkEphemeral(v *big.Int) error {
	if v.Sign() <= 0 || new(big.Int).Mod(v, g.N).Sign() == 0 {
		return fmt.Errorf("%w: ephemeral value is 0 mod N", ErrProtocol)
	}
	if v.Cmp(g.N) >= 0 {
		return fmt.Errorf("%w: ephemeral value out of range", ErrProtocol)
	}
	return nil
}

// scramble computes u = H(PAD(A) | PAD(B)); u == 0 aborts the exchange.
func (g *Group) scramble(A, B *big.Int) (*big.Int, error) {
	u := new(big.Int).SetBytes(utils.Sha256(g.pad(A), g.pad(B)))
	if u.Sign() == 0 {
		return nil, fmt.Errorf("%w: scrambling parameter is zero", ErrProtocol)
	}
	return u, nil
}

func (g *Group) sessionKey(S *big.Int) []byte {
	return utils.Sha256(g.pad(S))
}

func (g *Group) clientProof(A, B *big.Int, K []byte) []byte {
	return utils.Sha256(g.pad(A), g.pad(B), K)
}

func (g *Group) serverProof(A *big.Int, m1, K []byte) []byte {
	return utils.Sha256(g.pad(A), m1, K)
}

// privateKey computes x = H(salt | H(username ":" password)).
func privateKey(salt []byte, username string, password []byte) *big.Int {
	inner := utils.Sha256([]byte(username), []byte(":"), password)
	return new(big.Int).SetBytes(utils.Sha256(salt, inner))
}

func randomExponent(rng io.Reader) (*big.Int, error) {
	buf := make([]byte, ephemeralLen)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("failed to read ephemeral secret: %w", err)
	}
	e := new(big.Int).SetBytes(buf)
	if e.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero ephemeral secret", ErrProtocol)
	}
	return e, nil
}
