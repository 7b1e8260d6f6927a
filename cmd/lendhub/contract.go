package main

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/lendhub/lendhub-core/app"
	"github.com/lendhub/lendhub-core/contract"
	"github.com/lendhub/lendhub-core/wallet"
	"github.com/spf13/cobra"
)

func contractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Collateral contract commands",
	}

	cmd.AddCommand(contractAddressCmd())
	cmd.AddCommand(contractSignCmd("sign", "Add this wallet's partial signature and print the PSBT"))
	cmd.AddCommand(contractSignCmd("sign-claim", "Sign and finalize a borrower claim, print the transaction"))
	cmd.AddCommand(contractSignCmd("sign-liquidation", "Sign and finalize a liquidation, print the transaction"))

	return cmd
}

func contractAddressCmd() *cobra.Command {
	var borrower, lender, hub, version string

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Build the collateral address and descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := contract.ParseContractVersion(version)
			if err != nil {
				return err
			}
			borrowerPK, err := contract.ParsePublicKeyHex(borrower)
			if err != nil {
				return fmt.Errorf("borrower: %w", err)
			}
			lenderPK, err := contract.ParsePublicKeyHex(lender)
			if err != nil {
				return fmt.Errorf("lender: %w", err)
			}
			var hubPK *btcec.PublicKey
			if v == contract.VersionTwoOfThree {
				if hubPK, err = contract.ParsePublicKeyHex(hub); err != nil {
					return fmt.Errorf("hub: %w", err)
				}
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Terminate()

			addr, desc, err := contract.ContractAddress(borrowerPK, lenderPK, hubPK, v, a.Network.Params())
			if err != nil {
				return err
			}
			fmt.Printf("Address: %s\n", addr.EncodeAddress())
			fmt.Printf("Descriptor: %s\n", desc)
			return nil
		},
	}

	cmd.Flags().StringVar(&borrower, "borrower", "", "Borrower public key (hex)")
	cmd.Flags().StringVar(&lender, "lender", "", "Lender public key (hex)")
	cmd.Flags().StringVar(&hub, "hub", "", "Hub fallback public key (hex), 2-of-3 only")
	cmd.Flags().StringVar(&version, "version", "2-of-2", "Contract version: 2-of-3 or 2-of-2")
	return cmd
}

func contractSignCmd(use, short string) *cobra.Command {
	var user, descriptor, packet, ownKey, path string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if descriptor == "" || packet == "" || ownKey == "" {
				return errors.New("--descriptor, --psbt and --pubkey are required")
			}
			ownPK, err := contract.ParsePublicKeyHex(ownKey)
			if err != nil {
				return err
			}
			var derivation wallet.DerivationPath
			if path != "" {
				if derivation, err = wallet.ParseDerivationPath(path); err != nil {
					return err
				}
			}
			p, err := contract.DecodePsbt(packet)
			if err != nil {
				return err
			}

			return withUnlocked(user, func(a *app.App) error {
				desc, err := contract.ParseDescriptor(descriptor, a.Network.Params())
				if err != nil {
					return err
				}
				signer, err := a.Wallets.Signer(user)
				if err != nil {
					return err
				}
				return runSign(use, signer, p, desc, ownPK, derivation)
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	cmd.Flags().StringVar(&descriptor, "descriptor", "", "Contract descriptor")
	cmd.Flags().StringVar(&packet, "psbt", "", "PSBT (hex or base64)")
	cmd.Flags().StringVar(&ownKey, "pubkey", "", "Our contract public key (hex)")
	cmd.Flags().StringVar(&path, "path", "", "Derivation path of our key; omit for legacy contracts")
	return cmd
}

func runSign(use string, signer *contract.Signer, p *psbt.Packet, desc *contract.Descriptor, ownPK *btcec.PublicKey, path wallet.DerivationPath) error {
	switch use {
	case "sign":
		n, err := signer.PartiallySign(p, desc, ownPK, path)
		if err != nil {
			return err
		}
		out, err := contract.EncodePsbtHex(p)
		if err != nil {
			return err
		}
		fmt.Printf("Signed inputs: %d\n", n)
		fmt.Printf("PSBT: %s\n", out)
		return nil
	case "sign-claim", "sign-liquidation":
		sign := signer.SignClaimPsbt
		if use == "sign-liquidation" {
			sign = signer.SignLiquidationPsbt
		}
		tx, err := sign(p, desc, ownPK, path)
		if err != nil {
			return err
		}
		raw, err := contract.EncodeTxHex(tx)
		if err != nil {
			return err
		}
		fmt.Printf("Txid: %s\n", tx.TxHash())
		fmt.Printf("Transaction: %s\n", raw)
		return nil
	default:
		return fmt.Errorf("unknown sign command %q", use)
	}
}
