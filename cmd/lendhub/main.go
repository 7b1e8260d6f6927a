package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/lendhub/lendhub-core/app"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version info (Injected from Makefile)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configFile string
	debug      bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "lendhub",
		Short:   "LendHub wallet and contract signing core",
		Long:    `Manages encrypted borrower wallets, builds collateral multisig contracts, signs claim and liquidation PSBTs and runs SRP login checks.`,
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
	}

	// Register global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log to console at debug level")

	rootCmd.AddCommand(walletCmd())
	rootCmd.AddCommand(contractCmd())
	rootCmd.AddCommand(srpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Failed to execute command:", err)
		os.Exit(1)
	}
}

// openApp loads config, logger and db. Callers must Terminate it.
func openApp() (*app.App, error) {
	a, err := app.New(configFile, debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}

var stdinReader = bufio.NewReader(os.Stdin)

// readSecret prompts without echo on a terminal and reads a plain line otherwise.
func readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return b, err
	}
	line, err := stdinReader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// readNewSecret asks twice.
func readNewSecret(what string) ([]byte, error) {
	first, err := readSecret(fmt.Sprintf("New %s: ", what))
	if err != nil {
		return nil, err
	}
	second, err := readSecret(fmt.Sprintf("Repeat %s: ", what))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, errors.New(what + "s do not match")
	}
	return first, nil
}

func requireUser(user string) error {
	if user == "" {
		return errors.New("--user is required")
	}
	return nil
}
