package storage

import (
	"testing"

	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *WalletStore {
	t.Helper()
	db, err := OpenMemDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWalletStore(db)
}

func testRecord(username string) *WalletRecord {
	return &WalletRecord{
		Username:     username,
		PasswordHash: "$scrypt$ln=4,r=8,p=1$c2FsdA$ZGlnZXN0",
		Ciphertext:   "00$11",
		Network:      prt.NetworkRegtest,
	}
}

func TestWalletStoreCreateGet(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("Alice")
	require.NoError(t, s.Create(rec))

	got, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, rec.PasswordHash, got.PasswordHash)
	assert.Equal(t, rec.Ciphertext, got.Ciphertext)
	assert.Equal(t, prt.NetworkRegtest, got.Network)
	assert.Equal(t, uint32(0), got.NextIndex)
	assert.NotZero(t, got.CreatedAt)

	assert.ErrorIs(t, s.Create(testRecord("alice")), ErrRecordExists)
}

func TestWalletStoreNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("nobody")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, s.SetNextIndex("nobody", 1), ErrRecordNotFound)
}

func TestWalletStoreNextIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(testRecord("bob")))

	require.NoError(t, s.SetNextIndex("bob", 3))
	got, err := s.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got.NextIndex)

	assert.Error(t, s.SetNextIndex("bob", 2))
}

func TestWalletStoreListDelete(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, s.Create(testRecord(name)))
	}

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "alice", recs[0].Username)
	assert.Equal(t, "carol", recs[2].Username)

	require.NoError(t, s.Delete("bob"))
	recs, err = s.List()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
