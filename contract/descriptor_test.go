package contract

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorChecksumVector(t *testing.T) {
	sum, err := descriptorChecksum("raw(deadbeef)")
	require.NoError(t, err)
	assert.Equal(t, "89f8spxm", sum)

	_, err = descriptorChecksum("raw(dead\nbeef)")
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestStripChecksum(t *testing.T) {
	desc, err := stripChecksum("raw(deadbeef)#89f8spxm")
	require.NoError(t, err)
	assert.Equal(t, "raw(deadbeef)", desc)

	desc, err = stripChecksum("raw(deadbeef)")
	require.NoError(t, err)
	assert.Equal(t, "raw(deadbeef)", desc)

	_, err = stripChecksum("raw(deadbeef)#89f8spxn")
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func contractKeys(t *testing.T) (borrower, lender, hub *btcec.PublicKey) {
	t.Helper()
	b, err := newTestWallet(t, borrowerMnemonic).PublicKey(0)
	require.NoError(t, err)
	l, err := newTestWallet(t, lenderMnemonic).PublicKey(0)
	require.NoError(t, err)
	return b, l, newHubKey(t)
}

func TestContractAddressVersions(t *testing.T) {
	b, l, h := contractKeys(t)

	addr3, desc3, err := ContractAddress(b, l, h, VersionTwoOfThree, regtest)
	require.NoError(t, err)
	assert.Len(t, desc3.Keys, 3)
	assert.Equal(t, 2, desc3.Threshold)
	assert.True(t, strings.HasPrefix(addr3.EncodeAddress(), "bcrt1q"))
	assert.True(t, strings.HasPrefix(desc3.String(), "wsh(sortedmulti(2,"))

	addr2, desc2, err := ContractAddress(b, l, nil, VersionTwoOfTwo, regtest)
	require.NoError(t, err)
	assert.Len(t, desc2.Keys, 2)
	assert.NotEqual(t, addr3.EncodeAddress(), addr2.EncodeAddress())
	assert.False(t, desc2.Contains(h))
	assert.True(t, desc2.Contains(b))
	assert.True(t, desc2.Contains(l))

	_, _, err = ContractAddress(b, l, nil, VersionTwoOfThree, regtest)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, _, err = ContractAddress(b, l, h, ContractVersion(9), regtest)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestContractAddressIsOrderIndependent(t *testing.T) {
	b, l, h := contractKeys(t)

	a1, d1, err := ContractAddress(b, l, h, VersionTwoOfThree, regtest)
	require.NoError(t, err)
	a2, d2, err := ContractAddress(h, b, l, VersionTwoOfThree, regtest)
	require.NoError(t, err)

	assert.Equal(t, a1.EncodeAddress(), a2.EncodeAddress())
	assert.Equal(t, d1.String(), d2.String())
	assert.Equal(t, d1.WitnessScript, d2.WitnessScript)
}

func TestContractAddressRejectsDuplicateKeys(t *testing.T) {
	b, l, _ := contractKeys(t)
	_, _, err := ContractAddress(b, l, b, VersionTwoOfThree, regtest)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestParseDescriptorRoundTrip(t *testing.T) {
	b, l, h := contractKeys(t)
	_, desc, err := ContractAddress(b, l, h, VersionTwoOfThree, regtest)
	require.NoError(t, err)

	parsed, err := ParseDescriptor(desc.String(), regtest)
	require.NoError(t, err)
	assert.Equal(t, desc.String(), parsed.String())
	assert.Equal(t, desc.PkScript, parsed.PkScript)

	body, _, _ := strings.Cut(desc.String(), "#")
	parsed, err = ParseDescriptor(body, regtest)
	require.NoError(t, err)
	assert.Equal(t, desc.String(), parsed.String())
}

func TestParseDescriptorMalformed(t *testing.T) {
	b, l, h := contractKeys(t)
	_, desc, err := ContractAddress(b, l, h, VersionTwoOfThree, regtest)
	require.NoError(t, err)
	body, _, _ := strings.Cut(desc.String(), "#")

	cases := map[string]string{
		"bad checksum":  body + "#qqqqqqqq",
		"wrong wrapper": strings.Replace(body, "wsh(", "sh(", 1),
		"threshold":     strings.Replace(body, "sortedmulti(2,", "sortedmulti(x,", 1),
		"too high":      strings.Replace(body, "sortedmulti(2,", "sortedmulti(4,", 1),
		"bad key":       strings.Replace(body, "sortedmulti(2,", "sortedmulti(2,zz", 1),
		"no keys":       "wsh(sortedmulti(2))",
		"empty":         "",
	}
	for name, s := range cases {
		_, err := ParseDescriptor(s, regtest)
		assert.Error(t, err, name)
	}
}

func TestParseContractVersion(t *testing.T) {
	v, err := ParseContractVersion("2-of-2")
	require.NoError(t, err)
	assert.Equal(t, VersionTwoOfTwo, v)

	v, err = ParseContractVersion("2of3")
	require.NoError(t, err)
	assert.Equal(t, VersionTwoOfThree, v)

	_, err = ParseContractVersion("3-of-5")
	assert.Error(t, err)
}
