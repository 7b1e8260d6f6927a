package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/lendhub/lendhub-core/app"
	"github.com/lendhub/lendhub-core/storage"
	"github.com/spf13/cobra"
)

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet management commands",
		Long:  `Commands for creating and unlocking user wallets and deriving contract keys.`,
	}

	cmd.AddCommand(walletCreateCmd())
	cmd.AddCommand(walletUnlockCheckCmd())
	cmd.AddCommand(walletPubkeyCmd())
	cmd.AddCommand(walletNextKeyCmd())
	cmd.AddCommand(walletShowMnemonicCmd())
	cmd.AddCommand(walletListCmd())

	return cmd
}

// withUnlocked opens the app, unlocks the user's wallet and runs fn.
func withUnlocked(user string, fn func(a *app.App) error) error {
	if err := requireUser(user); err != nil {
		return err
	}
	pass, err := readSecret("Passphrase: ")
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Terminate()

	if _, err := a.Wallets.Unlock(user, pass); err != nil {
		return fmt.Errorf("failed to unlock wallet: %w", err)
	}
	return fn(a)
}

// Create new wallet
func walletCreateCmd() *cobra.Command {
	var user string
	var mnemonic string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet for a user, optionally from an existing mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			pass, err := readNewSecret("passphrase")
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Terminate()

			if mnemonic != "" {
				if err := a.Wallets.ImportWallet(user, mnemonic, pass); err != nil {
					return fmt.Errorf("failed to import wallet: %w", err)
				}
			} else {
				mnemonic, err = a.Wallets.CreateWallet(user, pass)
				if err != nil {
					return fmt.Errorf("failed to create wallet: %w", err)
				}
			}

			h, err := a.Wallets.Handle(user)
			if err != nil {
				return err
			}
			xpub, err := h.Xpub()
			if err != nil {
				return err
			}

			fmt.Println("=== New Wallet Created ===")
			fmt.Println("")
			fmt.Println("IMPORTANT: Write down your mnemonic phrase and keep it safe!")
			fmt.Println("The passphrase is part of the seed. Both are needed to recover the keys.")
			fmt.Println("")
			fmt.Printf("Mnemonic: %s\n", mnemonic)
			fmt.Printf("Network:  %s\n", a.Network)
			fmt.Printf("Xpub:     %s\n", xpub)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	cmd.Flags().StringVarP(&mnemonic, "mnemonic", "m", "", "Import this mnemonic instead of generating one")
	return cmd
}

func walletUnlockCheckCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "unlock-check",
		Short: "Verify the passphrase and show the wallet's xpub and contract index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUnlocked(user, func(a *app.App) error {
				h, err := a.Wallets.Handle(user)
				if err != nil {
					return err
				}
				xpub, err := h.Xpub()
				if err != nil {
					return err
				}
				idx, err := h.ContractIndex()
				if err != nil {
					return err
				}
				fmt.Println("Wallet unlocked")
				fmt.Printf("Xpub: %s\n", xpub)
				fmt.Printf("Next contract index: %d\n", idx)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	return cmd
}

func walletPubkeyCmd() *cobra.Command {
	var user string
	var index uint32

	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Show the contract public key at an index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUnlocked(user, func(a *app.App) error {
				h, err := a.Wallets.Handle(user)
				if err != nil {
					return err
				}
				path, err := h.ContractPath(index)
				if err != nil {
					return err
				}
				pk, err := h.PublicKey(index)
				if err != nil {
					return err
				}
				fmt.Printf("Path: %s\n", path)
				fmt.Printf("Public key: %s\n", hex.EncodeToString(pk.SerializeCompressed()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	cmd.Flags().Uint32VarP(&index, "index", "i", 0, "Contract index")
	return cmd
}

func walletNextKeyCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "next-key",
		Short: "Allocate the next contract key and record it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUnlocked(user, func(a *app.App) error {
				path, pk, err := a.Wallets.NextContractKey(user)
				if err != nil {
					return err
				}
				fmt.Printf("Path: %s\n", path)
				fmt.Printf("Public key: %s\n", hex.EncodeToString(pk.SerializeCompressed()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	return cmd
}

// Show mnemonic
func walletShowMnemonicCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "show-mnemonic",
		Short: "Show the wallet's mnemonic phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUnlocked(user, func(a *app.App) error {
				h, err := a.Wallets.Handle(user)
				if err != nil {
					return err
				}
				mnemonic, err := h.Mnemonic()
				if err != nil {
					return err
				}
				fmt.Println("=== Wallet Mnemonic ===")
				fmt.Println("")
				fmt.Println("WARNING: Never share your mnemonic with anyone!")
				fmt.Println("")
				fmt.Printf("Mnemonic: %s\n", mnemonic)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	return cmd
}

// List stored wallets
func walletListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored wallet records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Terminate()

			recs, err := storage.NewWalletStore(a.DB).List()
			if err != nil {
				return err
			}

			fmt.Println("=== Wallets ===")
			fmt.Println("")
			for _, rec := range recs {
				fmt.Printf("%s\n", rec.Username)
				fmt.Printf("  Network: %s\n", rec.Network)
				fmt.Printf("  Next index: %d\n", rec.NextIndex)
				fmt.Printf("  Created: %s\n", time.Unix(rec.CreatedAt, 0).Format(time.RFC3339))
				fmt.Println("")
			}
			return nil
		},
	}
}
