package app

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrTooManyAttempts = errors.New("too many failed unlock attempts, try again later")

// UnlockLimitConfig bounds passphrase guessing per user
type UnlockLimitConfig struct {
	MaxFailures int           // failures allowed inside Window: 5
	Window      time.Duration // sliding window: 1 minute
	BanDuration time.Duration // lockout once exceeded: 5 minutes
}

func DefaultUnlockLimitConfig() *UnlockLimitConfig {
	return &UnlockLimitConfig{
		MaxFailures: 5,
		Window:      time.Minute,
		BanDuration: 5 * time.Minute,
	}
}

// failureCounter tracks failures of one user in a fixed window
type failureCounter struct {
	count       int
	windowStart time.Time
	bannedUntil time.Time
}

// UnlockLimiter locks a user out after repeated wrong passphrases
type UnlockLimiter struct {
	mu sync.Mutex

	config *UnlockLimitConfig
	clock  clockwork.Clock
	users  map[string]*failureCounter
}

func NewUnlockLimiter(config *UnlockLimitConfig, clock clockwork.Clock) *UnlockLimiter {
	if config == nil {
		config = DefaultUnlockLimitConfig()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UnlockLimiter{
		config: config,
		clock:  clock,
		users:  make(map[string]*failureCounter),
	}
}

// Allow fails while the user is locked out
func (rl *UnlockLimiter) Allow(user string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if c, ok := rl.users[user]; ok && rl.clock.Now().Before(c.bannedUntil) {
		return ErrTooManyAttempts
	}
	return nil
}

// Failure records a wrong passphrase
func (rl *UnlockLimiter) Failure(user string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	c, ok := rl.users[user]
	if !ok {
		c = &failureCounter{windowStart: now}
		rl.users[user] = c
	}

	// Reset window if expired
	if now.Sub(c.windowStart) >= rl.config.Window {
		c.count = 0
		c.windowStart = now
	}

	c.count++
	if c.count >= rl.config.MaxFailures {
		c.bannedUntil = now.Add(rl.config.BanDuration)
		c.count = 0
		c.windowStart = now
	}
}

// Success clears the user's history
func (rl *UnlockLimiter) Success(user string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.users, user)
}

func (rl *UnlockLimiter) IsBanned(user string) bool {
	return rl.Allow(user) != nil
}

// Prune removes users with no recent failures and no active lockout
func (rl *UnlockLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	n := 0
	for user, c := range rl.users {
		if now.After(c.bannedUntil) && now.Sub(c.windowStart) >= rl.config.Window {
			delete(rl.users, user)
			n++
		}
	}
	return n
}
