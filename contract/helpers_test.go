package contract

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/lendhub/lendhub-core/wallet"
	"github.com/stretchr/testify/require"
)

const (
	borrowerMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	lenderMnemonic   = "legal winner thank year wave sausage worth useful legal winner thank yellow"
)

var regtest = &chaincfg.RegressionNetParams

func newTestWallet(t *testing.T, mnemonic string) *wallet.Wallet {
	t.Helper()
	w, _, err := wallet.New(rand.Reader, mnemonic, nil, prt.NetworkRegtest)
	require.NoError(t, err)
	return w
}

func newHubKey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}

// fundedPacket spends output 0 of a fake funding transaction paying to desc.
func fundedPacket(t *testing.T, desc *Descriptor, value int64, payout *btcec.PublicKey) (*psbt.Packet, *wire.MsgTx) {
	t.Helper()

	funding := wire.NewMsgTx(2)
	funding.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 7}, nil, nil))
	funding.AddTxOut(wire.NewTxOut(value, desc.PkScript))

	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(payout.SerializeCompressed()), regtest)
	require.NoError(t, err)
	payoutScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	spend := wire.NewMsgTx(2)
	spend.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: funding.TxHash(), Index: 0}, nil, nil))
	spend.AddTxOut(wire.NewTxOut(value-1_000, payoutScript))

	p, err := psbt.NewFromUnsignedTx(spend)
	require.NoError(t, err)
	p.Inputs[0].WitnessUtxo = funding.TxOut[0]
	return p, funding
}

func verifySpend(t *testing.T, tx *wire.MsgTx, prevOut *wire.TxOut) {
	t.Helper()
	fetcher := txscript.NewCannedPrevOutputFetcher(prevOut.PkScript, prevOut.Value)
	vm, err := txscript.NewEngine(prevOut.PkScript, tx, 0, txscript.StandardVerifyFlags, nil,
		txscript.NewTxSigHashes(tx, fetcher), prevOut.Value, fetcher)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}
