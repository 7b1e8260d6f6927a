package srp

import (
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	"github.com/lendhub/lendhub-core/common/utils"
)

// Registration is created once at signup and stored by the server. It never
// contains the password.
type Registration struct {
	Username string
	Salt     []byte
	Verifier []byte
}

func (r *Registration) SaltHex() string {
	return utils.BytesToHex(r.Salt)
}

func (r *Registration) VerifierHex() string {
	return utils.BytesToHex(r.Verifier)
}

// BeginRegistration draws a fresh salt and computes v = g^x mod N.
func BeginRegistration(rng io.Reader, username string, password []byte) (*Registration, error) {
	return Group2048.BeginRegistration(rng, username, password)
}

func (g *Group) BeginRegistration(rng io.Reader, username string, password []byte) (*Registration, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rng, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	x := privateKey(salt, username, password)
	v := g.exp(g.G, x)

	return &Registration{
		Username: username,
		Salt:     salt,
		Verifier: v.Bytes(),
	}, nil
}

// ClientSession holds the ephemeral state of one login attempt. It is used
// for a single VerifyServer call, successful or not.
type ClientSession struct {
	group *Group

	pubA *big.Int
	m1   []byte
	m2   []byte
	k    []byte

	used     bool
	verified bool
}

// ProcessLoginResponse answers the server challenge (salt, B) and returns a
// session carrying A and the client proof M1.
func ProcessLoginResponse(rng io.Reader, username string, password, salt, serverPublic []byte) (*ClientSession, error) {
	return Group2048.ProcessLoginResponse(rng, username, password, salt, serverPublic)
}

func (g *Group) ProcessLoginResponse(rng io.Reader, username string, password, salt, serverPublic []byte) (*ClientSession, error) {
	B := new(big.Int).SetBytes(serverPublic)
	if err := g.checkEphemeral(B); err != nil {
		return nil, err
	}

	a, err := randomExponent(rng)
	if err != nil {
		return nil, err
	}
	A := g.exp(g.G, a)

	u, err := g.scramble(A, B)
	if err != nil {
		return nil, err
	}
	x := privateKey(salt, username, password)

	// S = (B - k*g^x) ^ (a + u*x) mod N
	base := new(big.Int).Mul(g.k, g.exp(g.G, x))
	base.Sub(B, base)
	base.Mod(base, g.N)
	e := new(big.Int).Mul(u, x)
	e.Add(e, a)
	S := g.exp(base, e)

	K := g.sessionKey(S)
	m1 := g.clientProof(A, B, K)

	return &ClientSession{
		group: g,
		pubA:  A,
		m1:    m1,
		m2:    g.serverProof(A, m1, K),
		k:     K,
	}, nil
}

// PublicEphemeral returns A padded to the group size.
func (s *ClientSession) PublicEphemeral() []byte {
	return s.group.pad(s.pubA)
}

func (s *ClientSession) ClientProof() []byte {
	return append([]byte(nil), s.m1...)
}

// VerifyServer checks the server proof M2. The session cannot be reused
// afterwards and its key is only released after success.
func (s *ClientSession) VerifyServer(serverProof []byte) error {
	if s.used {
		return ErrServerAuthenticationFailed
	}
	s.used = true

	if subtle.ConstantTimeCompare(serverProof, s.m2) != 1 {
		s.wipe()
		return ErrServerAuthenticationFailed
	}
	s.verified = true
	return nil
}

// SessionKey returns K once the server has been verified.
func (s *ClientSession) SessionKey() ([]byte, error) {
	if !s.verified {
		return nil, ErrServerAuthenticationFailed
	}
	return append([]byte(nil), s.k...), nil
}

func (s *ClientSession) wipe() {
	for i := range s.k {
		s.k[i] = 0
	}
	s.k = nil
}
