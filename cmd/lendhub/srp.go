package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/lendhub/lendhub-core/srp"
	"github.com/spf13/cobra"
)

func srpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "srp",
		Short: "SRP-6a login tooling",
	}

	cmd.AddCommand(srpRegisterCmd())
	cmd.AddCommand(srpSelfcheckCmd())
	return cmd
}

func srpRegisterCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Compute the salt and verifier sent to the server at signup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			pass, err := readNewSecret("password")
			if err != nil {
				return err
			}

			reg, err := srp.BeginRegistration(rand.Reader, user, pass)
			if err != nil {
				return err
			}
			fmt.Printf("Username: %s\n", reg.Username)
			fmt.Printf("Salt: %s\n", reg.SaltHex())
			fmt.Printf("Verifier: %s\n", reg.VerifierHex())
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	return cmd
}

// srpSelfcheckCmd runs a full registration and login against a local verifier.
func srpSelfcheckCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "selfcheck",
		Short: "Register and log in against an in-process verifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			pass, err := readSecret("Password: ")
			if err != nil {
				return err
			}

			start := time.Now()
			auth := srp.NewAuthenticator(rand.Reader, srp.DefaultSessionTTL)
			reg, err := auth.BeginRegistration(user, pass)
			if err != nil {
				return err
			}

			server, err := srp.NewServerSession(rand.Reader, reg)
			if err != nil {
				return err
			}
			ch, err := auth.ProcessLoginResponse(user, pass, hex.EncodeToString(server.Salt()), hex.EncodeToString(server.PublicEphemeral()))
			if err != nil {
				return err
			}

			A, err := hex.DecodeString(ch.A)
			if err != nil {
				return err
			}
			m1, err := hex.DecodeString(ch.ClientProof)
			if err != nil {
				return err
			}
			m2, err := server.VerifyClient(A, m1)
			if err != nil {
				return err
			}
			if _, err := auth.VerifyServer(ch.AttemptID, hex.EncodeToString(m2)); err != nil {
				return err
			}

			fmt.Printf("SRP self-check passed in %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	return cmd
}
