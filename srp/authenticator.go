package srp

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lendhub/lendhub-core/common/logger"
	"github.com/lendhub/lendhub-core/common/utils"
)

const DefaultSessionTTL = 2 * time.Minute

// LoginChallenge is what the client sends back to the server: A and M1 as
// lowercase hex, plus the id used to finish the attempt.
type LoginChallenge struct {
	AttemptID   string `json:"attemptId"`
	A           string `json:"a"`
	ClientProof string `json:"clientProof"`
}

type pendingLogin struct {
	session *ClientSession
	expires time.Time
}

// Authenticator keeps one ClientSession per login attempt, so concurrent
// logins do not share state. Attempts expire after the configured TTL.
type Authenticator struct {
	mu       sync.Mutex
	rng      io.Reader
	group    *Group
	ttl      time.Duration
	clock    clockwork.Clock
	sessions map[uuid.UUID]*pendingLogin
}

func NewAuthenticator(rng io.Reader, ttl time.Duration) *Authenticator {
	return newAuthenticator(rng, ttl, clockwork.NewRealClock())
}

func newAuthenticator(rng io.Reader, ttl time.Duration, clock clockwork.Clock) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Authenticator{
		rng:      rng,
		group:    Group2048,
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[uuid.UUID]*pendingLogin),
	}
}

func (a *Authenticator) BeginRegistration(username string, password []byte) (*Registration, error) {
	return a.group.BeginRegistration(a.rng, username, password)
}

// ProcessLoginResponse takes the server's hex salt and B and starts a new
// login attempt.
func (a *Authenticator) ProcessLoginResponse(username string, password []byte, saltHex, serverPublicHex string) (*LoginChallenge, error) {
	salt, err := utils.HexToBytes(saltHex)
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: bad salt", ErrProtocol)
	}
	serverPublic, err := utils.HexToBytes(serverPublicHex)
	if err != nil {
		return nil, fmt.Errorf("%w: bad server ephemeral", ErrProtocol)
	}

	session, err := a.group.ProcessLoginResponse(a.rng, username, password, salt, serverPublic)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewRandomFromReader(a.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate attempt id: %w", err)
	}

	a.mu.Lock()
	a.sessions[id] = &pendingLogin{session: session, expires: a.clock.Now().Add(a.ttl)}
	a.mu.Unlock()

	logger.Debug("srp login attempt started: ", id.String())
	return &LoginChallenge{
		AttemptID:   id.String(),
		A:           utils.BytesToHex(session.PublicEphemeral()),
		ClientProof: utils.BytesToHex(session.ClientProof()),
	}, nil
}

// VerifyServer consumes the attempt and checks the server proof. It returns
// the session key on success. Unknown, expired and failed attempts all return
// ErrServerAuthenticationFailed.
func (a *Authenticator) VerifyServer(attemptID, serverProofHex string) ([]byte, error) {
	id, err := uuid.Parse(attemptID)
	if err != nil {
		return nil, ErrServerAuthenticationFailed
	}

	a.mu.Lock()
	pending, ok := a.sessions[id]
	delete(a.sessions, id)
	now := a.clock.Now()
	a.mu.Unlock()

	if !ok || now.After(pending.expires) {
		logger.Warn("srp attempt unknown or expired: ", attemptID)
		return nil, ErrServerAuthenticationFailed
	}

	proof, err := utils.HexToBytes(serverProofHex)
	if err != nil {
		proof = nil
	}
	if err := pending.session.VerifyServer(proof); err != nil {
		logger.Warn("srp server proof rejected: ", attemptID)
		return nil, ErrServerAuthenticationFailed
	}
	return pending.session.SessionKey()
}

// Prune drops expired attempts and returns how many were removed.
func (a *Authenticator) Prune() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	n := 0
	for id, p := range a.sessions {
		if now.After(p.expires) {
			p.session.wipe()
			delete(a.sessions, id)
			n++
		}
	}
	return n
}

// Pending is the number of attempts awaiting VerifyServer.
func (a *Authenticator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}
