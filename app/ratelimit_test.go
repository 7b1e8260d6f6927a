package app

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lendhub/lendhub-core/kdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlockLimiterBansAfterFailures(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewUnlockLimiter(&UnlockLimitConfig{MaxFailures: 3, Window: time.Minute, BanDuration: 5 * time.Minute}, clock)

	rl.Failure("alice")
	rl.Failure("alice")
	assert.NoError(t, rl.Allow("alice"))
	rl.Failure("alice")
	assert.ErrorIs(t, rl.Allow("alice"), ErrTooManyAttempts)
	assert.NoError(t, rl.Allow("bob"))

	clock.Advance(5*time.Minute + time.Second)
	assert.NoError(t, rl.Allow("alice"))
	assert.False(t, rl.IsBanned("alice"))
}

func TestUnlockLimiterWindowResets(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewUnlockLimiter(&UnlockLimitConfig{MaxFailures: 3, Window: time.Minute, BanDuration: time.Minute}, clock)

	rl.Failure("alice")
	rl.Failure("alice")
	clock.Advance(61 * time.Second)
	rl.Failure("alice")
	assert.NoError(t, rl.Allow("alice"))

	rl.Success("alice")
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, rl.Prune())

	rl.Failure("bob")
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, rl.Prune())
}

func TestUnlockIsRateLimited(t *testing.T) {
	svc, _ := newTestService(t)
	clock := clockwork.NewFakeClock()
	svc.limiter = NewUnlockLimiter(&UnlockLimitConfig{MaxFailures: 2, Window: time.Minute, BanDuration: time.Minute}, clock)

	require.NoError(t, svc.ImportWallet("frank", testMnemonic, []byte("foo")))
	svc.Unload("frank")

	for i := 0; i < 2; i++ {
		_, err := svc.Unlock("frank", []byte("wrong"))
		assert.ErrorIs(t, err, kdf.ErrIncorrectPassphrase)
	}
	_, err := svc.Unlock("frank", []byte("foo"))
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	clock.Advance(2 * time.Minute)
	_, err = svc.Unlock("frank", []byte("foo"))
	assert.NoError(t, err)
}
