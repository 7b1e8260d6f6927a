package contract

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lendhub/lendhub-core/common/utils"
)

// ContractVersion selects the key set of a collateral contract.
type ContractVersion uint8

const (
	// VersionTwoOfThree is borrower, lender and the hub's fallback key.
	VersionTwoOfThree ContractVersion = iota + 1
	// VersionTwoOfTwo is borrower and lender only.
	VersionTwoOfTwo
)

func (v ContractVersion) String() string {
	switch v {
	case VersionTwoOfThree:
		return "2-of-3"
	case VersionTwoOfTwo:
		return "2-of-2"
	default:
		return "unknown(" + strconv.Itoa(int(v)) + ")"
	}
}

func ParseContractVersion(s string) (ContractVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2-of-3", "2of3", "v1":
		return VersionTwoOfThree, nil
	case "2-of-2", "2of2", "v2":
		return VersionTwoOfTwo, nil
	default:
		return 0, fmt.Errorf("unknown contract version %q", s)
	}
}

const (
	descPrefix = "wsh(sortedmulti("
	descSuffix = "))"
)

// Descriptor is a P2WSH sortedmulti output descriptor. Keys are kept in
// BIP 67 order, so the script does not depend on how callers ordered them.
type Descriptor struct {
	Threshold     int
	Keys          []*btcec.PublicKey
	WitnessScript []byte
	PkScript      []byte
	Address       btcutil.Address

	text string
}

// String returns the descriptor with its checksum.
func (d *Descriptor) String() string {
	return d.text
}

// Contains reports whether pk is one of the descriptor's keys.
func (d *Descriptor) Contains(pk *btcec.PublicKey) bool {
	if pk == nil {
		return false
	}
	for _, k := range d.Keys {
		if k.IsEqual(pk) {
			return true
		}
	}
	return false
}

// ContractAddress builds the collateral address and descriptor for a loan.
// fallbackPK is required for VersionTwoOfThree and ignored for VersionTwoOfTwo.
func ContractAddress(borrowerPK, lenderPK, fallbackPK *btcec.PublicKey, version ContractVersion, params *chaincfg.Params) (btcutil.Address, *Descriptor, error) {
	var keys []*btcec.PublicKey
	switch version {
	case VersionTwoOfThree:
		keys = []*btcec.PublicKey{borrowerPK, lenderPK, fallbackPK}
	case VersionTwoOfTwo:
		keys = []*btcec.PublicKey{borrowerPK, lenderPK}
	default:
		return nil, nil, fmt.Errorf("%w: unsupported contract version %s", ErrInvalidDescriptor, version)
	}

	desc, err := NewDescriptor(2, keys, params)
	if err != nil {
		return nil, nil, err
	}
	return desc.Address, desc, nil
}

// NewDescriptor builds a threshold-of-len(keys) sortedmulti P2WSH descriptor.
func NewDescriptor(threshold int, keys []*btcec.PublicKey, params *chaincfg.Params) (*Descriptor, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: missing network params", ErrInvalidDescriptor)
	}
	if len(keys) == 0 || len(keys) > txscript.MaxPubKeysPerMultiSig {
		return nil, fmt.Errorf("%w: %d keys", ErrInvalidDescriptor, len(keys))
	}
	if threshold < 1 || threshold > len(keys) {
		return nil, fmt.Errorf("%w: threshold %d of %d", ErrInvalidDescriptor, threshold, len(keys))
	}

	sorted := make([]*btcec.PublicKey, len(keys))
	for i, k := range keys {
		if k == nil {
			return nil, fmt.Errorf("%w: key %d missing", ErrInvalidPublicKey, i)
		}
		sorted[i] = k
	}
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].SerializeCompressed(), sorted[j].SerializeCompressed()) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].IsEqual(sorted[i-1]) {
			return nil, fmt.Errorf("%w: duplicate key %x", ErrInvalidDescriptor, sorted[i].SerializeCompressed())
		}
	}

	addrKeys := make([]*btcutil.AddressPubKey, len(sorted))
	hexKeys := make([]string, len(sorted))
	for i, k := range sorted {
		ser := k.SerializeCompressed()
		ak, err := btcutil.NewAddressPubKey(ser, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		addrKeys[i] = ak
		hexKeys[i] = utils.BytesToHex(ser)
	}

	witnessScript, err := txscript.MultiSigScript(addrKeys, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	scriptHash := sha256.Sum256(witnessScript)
	addr, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	body := descPrefix + strconv.Itoa(threshold) + "," + strings.Join(hexKeys, ",") + descSuffix
	text, err := addChecksum(body)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		Threshold:     threshold,
		Keys:          sorted,
		WitnessScript: witnessScript,
		PkScript:      pkScript,
		Address:       addr,
		text:          text,
	}, nil
}

// ParseDescriptor reads "wsh(sortedmulti(k,<hex>,...))" with an optional
// "#checksum" suffix. Keys must be compressed hex public keys.
func ParseDescriptor(s string, params *chaincfg.Params) (*Descriptor, error) {
	body, err := stripChecksum(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(body, descPrefix) || !strings.HasSuffix(body, descSuffix) {
		return nil, fmt.Errorf("%w: expected wsh(sortedmulti(...))", ErrInvalidDescriptor)
	}

	args := strings.Split(body[len(descPrefix):len(body)-len(descSuffix)], ",")
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: missing keys", ErrInvalidDescriptor)
	}
	threshold, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad threshold %q", ErrInvalidDescriptor, args[0])
	}

	keys := make([]*btcec.PublicKey, 0, len(args)-1)
	for _, arg := range args[1:] {
		raw, err := utils.HexToFixedBytes(arg, btcec.PubKeyBytesLenCompressed)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrInvalidPublicKey, arg, err)
		}
		pk, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		keys = append(keys, pk)
	}
	return NewDescriptor(threshold, keys, params)
}

// ParsePublicKeyHex parses a compressed or uncompressed hex public key.
func ParsePublicKeyHex(s string) (*btcec.PublicKey, error) {
	raw, err := utils.HexToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	pk, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pk, nil
}
