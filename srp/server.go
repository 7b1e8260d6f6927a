package srp

import (
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

// ServerSession is the verifier side of one login attempt.
type ServerSession struct {
	group *Group
	reg   *Registration

	v    *big.Int
	b    *big.Int
	pubB *big.Int

	k    []byte
	used bool
}

func NewServerSession(rng io.Reader, reg *Registration) (*ServerSession, error) {
	return Group2048.NewServerSession(rng, reg)
}

// NewServerSession computes B = k*v + g^b mod N for a stored registration.
func (g *Group) NewServerSession(rng io.Reader, reg *Registration) (*ServerSession, error) {
	if reg == nil || len(reg.Verifier) == 0 || len(reg.Salt) == 0 {
		return nil, fmt.Errorf("%w: incomplete registration", ErrProtocol)
	}

	b, err := randomExponent(rng)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(reg.Verifier)

	B := new(big.Int).Mul(g.k, v)
	B.Add(B, g.exp(g.G, b))
	B.Mod(B, g.N)

	return &ServerSession{group: g, reg: reg, v: v, b: b, pubB: B}, nil
}

func (s *ServerSession) Salt() []byte {
	return s.reg.Salt
}

// PublicEphemeral returns B padded to the group size.
func (s *ServerSession) PublicEphemeral() []byte {
	return s.group.pad(s.pubB)
}

// VerifyClient checks M1 and returns the server proof M2.
func (s *ServerSession) VerifyClient(clientPublic, clientProof []byte) ([]byte, error) {
	if s.used {
		return nil, ErrClientAuthenticationFailed
	}
	s.used = true

	g := s.group
	A := new(big.Int).SetBytes(clientPublic)
	if err := g.checkEphemeral(A); err != nil {
		return nil, err
	}
	u, err := g.scramble(A, s.pubB)
	if err != nil {
		return nil, err
	}

	// S = (A * v^u) ^ b mod N
	base := new(big.Int).Mul(A, g.exp(s.v, u))
	base.Mod(base, g.N)
	S := g.exp(base, s.b)

	K := g.sessionKey(S)
	if subtle.ConstantTimeCompare(clientProof, g.clientProof(A, s.pubB, K)) != 1 {
		return nil, ErrClientAuthenticationFailed
	}
	s.k = K
	return g.serverProof(A, clientProof, K), nil
}

// SessionKey returns K after a successful VerifyClient.
func (s *ServerSession) SessionKey() ([]byte, error) {
	if s.k == nil {
		return nil, ErrClientAuthenticationFailed
	}
	return append([]byte(nil), s.k...), nil
}
