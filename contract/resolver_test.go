package contract

import (
	"testing"

	"github.com/lendhub/lendhub-core/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExplicitPath(t *testing.T) {
	w := newTestWallet(t, borrowerMnemonic)
	pk, err := w.PublicKey(5)
	require.NoError(t, err)
	path, err := w.ContractPath(5)
	require.NoError(t, err)

	priv, err := NewResolver(w).Resolve(pk, path)
	require.NoError(t, err)
	assert.True(t, priv.PubKey().IsEqual(pk))
}

func TestResolveDerivationMismatch(t *testing.T) {
	w := newTestWallet(t, borrowerMnemonic)
	pk, err := w.PublicKey(5)
	require.NoError(t, err)
	wrong, err := w.ContractPath(6)
	require.NoError(t, err)

	_, err = NewResolver(w).Resolve(pk, wrong)
	assert.ErrorIs(t, err, ErrDerivationMismatch)
	assert.ErrorIs(t, err, ErrNoMatchingKey)
}

func TestResolveLegacyScan(t *testing.T) {
	w := newTestWallet(t, borrowerMnemonic)
	pk, err := w.PublicKey(37)
	require.NoError(t, err)

	r := NewResolver(w)
	priv, index, err := r.ScanLegacy(pk)
	require.NoError(t, err)
	assert.Equal(t, uint32(37), index)
	assert.True(t, priv.PubKey().IsEqual(pk))

	priv, err = r.Resolve(pk, nil)
	require.NoError(t, err)
	assert.True(t, priv.PubKey().IsEqual(pk))
}

func TestLegacyScanIsBounded(t *testing.T) {
	w := newTestWallet(t, borrowerMnemonic)
	r := NewResolver(w)

	last, err := w.PublicKey(LegacyScanBound - 1)
	require.NoError(t, err)
	_, index, err := r.ScanLegacy(last)
	require.NoError(t, err)
	assert.Equal(t, uint32(LegacyScanBound-1), index)

	for _, i := range []uint32{LegacyScanBound, 150} {
		pk, err := w.PublicKey(i)
		require.NoError(t, err)
		_, err = r.Resolve(pk, nil)
		assert.ErrorIs(t, err, ErrNoMatchingKey, "index %d", i)
	}
}

func TestResolveForeignKey(t *testing.T) {
	w := newTestWallet(t, borrowerMnemonic)
	other := newTestWallet(t, lenderMnemonic)
	pk, err := other.PublicKey(0)
	require.NoError(t, err)

	_, err = NewResolver(w).Resolve(pk, nil)
	assert.ErrorIs(t, err, ErrNoMatchingKey)

	_, err = NewResolver(w).Resolve(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestResolveThroughHandle(t *testing.T) {
	h := wallet.NewHandle()
	_, err := NewResolver(h).Resolve(newHubKey(t), nil)
	assert.ErrorIs(t, err, wallet.ErrWalletNotLoaded)
}
