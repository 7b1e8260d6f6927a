package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	prt "github.com/lendhub/lendhub-core/protocol"
)

// DerivationPath holds raw BIP32 child indices; hardened components carry the
// hdkeychain.HardenedKeyStart offset.
type DerivationPath []uint32

// ContractPath returns m/586'/{coin}'/{index}'. index must be below 2^31.
func ContractPath(network prt.Network, index uint32) (DerivationPath, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidPath, index)
	}
	return DerivationPath{
		hdkeychain.HardenedKeyStart + ContractPurpose,
		hdkeychain.HardenedKeyStart + network.CoinType(),
		hdkeychain.HardenedKeyStart + index,
	}, nil
}

// ParseDerivationPath accepts "m/586'/1'/7'", "586h/1h/7h" and mixed forms.
func ParseDerivationPath(s string) (DerivationPath, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "m/")
	if s == "" || s == "m" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parts := strings.Split(s, "/")
	path := make(DerivationPath, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") || strings.HasSuffix(part, "H") {
			hardened = true
			part = part[:len(part)-1]
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, part)
		}
		if n >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("%w: component %d out of range", ErrInvalidPath, n)
		}
		idx := uint32(n)
		if hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		path = append(path, idx)
	}
	return path, nil
}

func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range p {
		b.WriteByte('/')
		if idx >= hdkeychain.HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(idx-hdkeychain.HardenedKeyStart), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	}
	return b.String()
}

func (p DerivationPath) Equal(o DerivationPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
