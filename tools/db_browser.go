package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lendhub/lendhub-core/common/utils"
	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/lendhub/lendhub-core/storage"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run tools/db_browser.go <db_path> [command]")
		fmt.Println("Commands:")
		fmt.Println("  wallets          - List all wallet records")
		fmt.Println("  wallet <user>    - Show one wallet record")
		fmt.Println("  all              - Show all keys")
		return
	}

	dbPath := os.Args[1]
	command := "wallets"
	if len(os.Args) > 2 {
		command = os.Args[2]
	}

	// Read only so a running service is never disturbed
	db, err := leveldb.OpenFile(dbPath, &opt.Options{ReadOnly: true})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Database opened: %s\n\n", dbPath)

	store := storage.NewWalletStore(db)
	switch command {
	case "wallets":
		listWallets(store)
	case "wallet":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run tools/db_browser.go <db_path> wallet <user>")
			return
		}
		showWallet(store, os.Args[3])
	case "all":
		showAllKeys(db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
	}
}

func listWallets(store *storage.WalletStore) {
	fmt.Println("=== WALLETS ===")

	recs, err := store.List()
	if err != nil {
		fmt.Printf("Failed to list wallets: %v\n", err)
		return
	}
	for _, rec := range recs {
		fmt.Printf("%-24s %-8s next index %d\n", rec.Username, rec.Network, rec.NextIndex)
	}
	fmt.Printf("Total wallets: %d\n\n", len(recs))
}

func showWallet(store *storage.WalletStore, username string) {
	fmt.Printf("=== WALLET %s ===\n", username)

	rec, err := store.Get(username)
	if err != nil {
		fmt.Printf("Wallet not found: %v\n", err)
		return
	}

	salt, _, _ := strings.Cut(rec.Ciphertext, "$")
	fmt.Printf("Network:       %s\n", rec.Network)
	fmt.Printf("Next index:    %d\n", rec.NextIndex)
	fmt.Printf("Hash scheme:   %s\n", hashScheme(string(rec.PasswordHash)))
	fmt.Printf("Cipher salt:   %s\n", salt)
	fmt.Printf("Cipher length: %d bytes\n", (len(rec.Ciphertext)-len(salt)-1)/2)
	fmt.Printf("Created:       %s\n", time.Unix(rec.CreatedAt, 0).Format(time.RFC3339))
	fmt.Printf("Updated:       %s\n", time.Unix(rec.UpdatedAt, 0).Format(time.RFC3339))
	fmt.Println()
}

// hashScheme keeps the algorithm and cost, drops salt and digest.
func hashScheme(phc string) string {
	parts := strings.Split(phc, "$")
	if len(parts) < 3 {
		return "unknown"
	}
	return "$" + parts[1] + "$" + parts[2]
}

func showAllKeys(db *leveldb.DB) {
	fmt.Println("=== ALL KEYS ===")

	iter := db.NewIterator(nil, nil)
	defer iter.Release()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if strings.HasPrefix(string(key), prt.PrefixWallet) {
			fmt.Printf("[%d] wallet %s (%d bytes)\n", count, utils.UsernameFromWalletKey(key), len(iter.Value()))
		} else {
			fmt.Printf("[%d] %q (%d bytes)\n", count, key, len(iter.Value()))
		}

		count++
		if count >= 50 { // Show max 50 entries
			fmt.Printf("... (showing first 50 entries)\n")
			break
		}
	}

	fmt.Printf("Total entries: %d\n", count)
}
