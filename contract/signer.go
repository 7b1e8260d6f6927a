package contract

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lendhub/lendhub-core/common/logger"
	"github.com/lendhub/lendhub-core/wallet"
)

// Signer signs collateral spends with keys owned by a KeyDeriver.
type Signer struct {
	resolver *Resolver
}

func NewSigner(keys KeyDeriver) *Signer {
	return &Signer{resolver: NewResolver(keys)}
}

// PartiallySign adds our signature to every input that spends desc and
// returns the number of inputs signed. The packet is modified in place.
// A nil path triggers the legacy key scan.
func (s *Signer) PartiallySign(p *psbt.Packet, desc *Descriptor, ownPK *btcec.PublicKey, path wallet.DerivationPath) (int, error) {
	if desc == nil {
		return 0, fmt.Errorf("%w: missing descriptor", ErrInvalidDescriptor)
	}
	if !desc.Contains(ownPK) {
		return 0, ErrKeyNotInDescriptor
	}
	if err := checkPacket(p); err != nil {
		return 0, err
	}

	priv, err := s.resolver.Resolve(ownPK, path)
	if err != nil {
		return 0, err
	}
	defer priv.Zero()

	return signInputs(p, desc, priv)
}

// SignClaimPsbt signs the borrower's claim of returned collateral and
// extracts the final transaction. The lender's signature must already be in p.
func (s *Signer) SignClaimPsbt(p *psbt.Packet, desc *Descriptor, ownPK *btcec.PublicKey, path wallet.DerivationPath) (*wire.MsgTx, error) {
	return s.signAndFinalize("claim", p, desc, ownPK, path)
}

// SignLiquidationPsbt signs a liquidation spend of the collateral and extracts
// the final transaction.
func (s *Signer) SignLiquidationPsbt(p *psbt.Packet, desc *Descriptor, ownPK *btcec.PublicKey, path wallet.DerivationPath) (*wire.MsgTx, error) {
	return s.signAndFinalize("liquidation", p, desc, ownPK, path)
}

func (s *Signer) signAndFinalize(kind string, p *psbt.Packet, desc *Descriptor, ownPK *btcec.PublicKey, path wallet.DerivationPath) (*wire.MsgTx, error) {
	n, err := s.PartiallySign(p, desc, ownPK, path)
	if err != nil {
		return nil, err
	}

	spent, err := spentOutputs(p)
	if err != nil {
		return nil, err
	}
	tx, err := finalize(p)
	if err != nil {
		logger.Warn("failed to finalize ", kind, " psbt: ", err)
		return nil, err
	}
	if err := verifyContractInputs(tx, spent, desc); err != nil {
		logger.Warn("rejected ", kind, " psbt: ", err)
		return nil, err
	}

	logger.Info("signed ", kind, " psbt, inputs: ", n, ", txid: ", tx.TxHash().String())
	return tx, nil
}

func checkPacket(p *psbt.Packet) error {
	if p == nil || p.UnsignedTx == nil {
		return fmt.Errorf("%w: missing unsigned transaction", ErrMalformedPsbt)
	}
	if len(p.Inputs) != len(p.UnsignedTx.TxIn) {
		return fmt.Errorf("%w: %d inputs for %d tx inputs", ErrMalformedPsbt, len(p.Inputs), len(p.UnsignedTx.TxIn))
	}
	if len(p.Outputs) != len(p.UnsignedTx.TxOut) {
		return fmt.Errorf("%w: %d outputs for %d tx outputs", ErrMalformedPsbt, len(p.Outputs), len(p.UnsignedTx.TxOut))
	}
	return nil
}

// spentOutput returns the output spent by input i, or nil when the packet
// carries no UTXO information for it.
func spentOutput(p *psbt.Packet, i int) (*wire.TxOut, error) {
	in := &p.Inputs[i]
	if in.WitnessUtxo != nil {
		return in.WitnessUtxo, nil
	}
	if in.NonWitnessUtxo == nil {
		return nil, nil
	}

	prev := p.UnsignedTx.TxIn[i].PreviousOutPoint
	if in.NonWitnessUtxo.TxHash() != prev.Hash {
		return nil, fmt.Errorf("%w: input %d utxo does not match outpoint", ErrMalformedPsbt, i)
	}
	if int(prev.Index) >= len(in.NonWitnessUtxo.TxOut) {
		return nil, fmt.Errorf("%w: input %d outpoint index %d out of range", ErrMalformedPsbt, i, prev.Index)
	}
	return in.NonWitnessUtxo.TxOut[prev.Index], nil
}

// spentOutputs resolves the spent output of every input; nil where unknown.
func spentOutputs(p *psbt.Packet) ([]*wire.TxOut, error) {
	spent := make([]*wire.TxOut, len(p.UnsignedTx.TxIn))
	for i := range spent {
		out, err := spentOutput(p, i)
		if err != nil {
			return nil, err
		}
		spent[i] = out
	}
	return spent, nil
}

func prevOutFetcher(tx *wire.MsgTx, spent []*wire.TxOut) *txscript.MultiPrevOutFetcher {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range tx.TxIn {
		out := spent[i]
		if out == nil {
			// Unknown inputs still need an entry for the sighash midstate.
			out = &wire.TxOut{}
		}
		fetcher.AddPrevOut(txIn.PreviousOutPoint, out)
	}
	return fetcher
}

func signInputs(p *psbt.Packet, desc *Descriptor, priv *btcec.PrivateKey) (int, error) {
	tx := p.UnsignedTx

	spent, err := spentOutputs(p)
	if err != nil {
		return 0, err
	}
	sigHashes := txscript.NewTxSigHashes(tx, prevOutFetcher(tx, spent))

	updater, err := psbt.NewUpdater(p)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedPsbt, err)
	}

	pubKey := priv.PubKey().SerializeCompressed()
	signed := 0
	for i, out := range spent {
		if out == nil || !bytes.Equal(out.PkScript, desc.PkScript) {
			continue
		}
		if ht := p.Inputs[i].SighashType; ht != 0 && ht != txscript.SigHashAll {
			return signed, fmt.Errorf("%w: input %d requests unsupported sighash %v", ErrMalformedPsbt, i, ht)
		}

		sig, err := txscript.RawTxInWitnessSignature(tx, sigHashes, i, out.Value, desc.WitnessScript, txscript.SigHashAll, priv)
		if err != nil {
			return signed, fmt.Errorf("failed to sign input %d: %w", i, err)
		}

		outcome, err := updater.Sign(i, sig, pubKey, nil, desc.WitnessScript)
		if err != nil {
			return signed, fmt.Errorf("%w: input %d: %v", ErrMalformedPsbt, i, err)
		}
		switch outcome {
		case psbt.SignFinalized:
			return signed, fmt.Errorf("%w: input %d is already finalized", ErrMalformedPsbt, i)
		case psbt.SignInvalid:
			return signed, fmt.Errorf("%w: input %d rejected signature", ErrMalformedPsbt, i)
		}
		signed++
	}

	if signed == 0 {
		return 0, ErrNoContractInput
	}
	return signed, nil
}

func finalize(p *psbt.Packet) (*wire.MsgTx, error) {
	if err := psbt.MaybeFinalizeAll(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFinalize, err)
	}
	tx, err := psbt.Extract(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFinalize, err)
	}
	return tx, nil
}

// verifyContractInputs executes the final witness of every input that spends
// desc. Counterparty signatures come from the packet and are only checked here.
func verifyContractInputs(tx *wire.MsgTx, spent []*wire.TxOut, desc *Descriptor) error {
	fetcher := prevOutFetcher(tx, spent)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i, out := range spent {
		if out == nil || !bytes.Equal(out.PkScript, desc.PkScript) {
			continue
		}
		vm, err := txscript.NewEngine(out.PkScript, tx, i, txscript.StandardVerifyFlags, nil, sigHashes, out.Value, fetcher)
		if err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrInvalidSignature, i, err)
		}
		if err := vm.Execute(); err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrInvalidSignature, i, err)
		}
	}
	return nil
}

// DecodePsbt accepts a hex or base64 encoded packet.
func DecodePsbt(s string) (*psbt.Packet, error) {
	s = strings.TrimSpace(s)
	if raw, err := hex.DecodeString(s); err == nil {
		p, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPsbt, err)
		}
		return p, nil
	}
	p, err := psbt.NewFromRawBytes(strings.NewReader(s), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPsbt, err)
	}
	return p, nil
}

func EncodePsbtHex(p *psbt.Packet) (string, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

func EncodeTxHex(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
