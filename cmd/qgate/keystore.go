package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	"github.com/viant/qgate/service/keystore"
)

const seedEnv = "QGATE_SEED"

var keystoreFlags struct {
	url      string
	key      string
	generate bool
}

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "Manage the encrypted key material",
}

var secureCmd = &cobra.Command{
	Use:   "secure",
	Short: "Encrypt a seed into the key store",
	Long:  "Reads a base58 ed25519 seed from " + seedEnv + ", or generates one with --generate, and stores it encrypted at --url.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if keystoreFlags.url == "" {
			return errors.New("--url was empty")
		}
		seed := os.Getenv(seedEnv)
		if keystoreFlags.generate {
			raw := make([]byte, ed25519.SeedSize)
			if _, err := rand.Read(raw); err != nil {
				return err
			}
			seed = base58.Encode(raw)
		}
		if seed == "" {
			return fmt.Errorf("%s was empty and --generate was not set", seedEnv)
		}
		material := &keystore.Material{Seed: seed}
		keys, err := keystore.NewStatic(material)
		if err != nil {
			return err
		}
		if err = keystore.Secure(cmd.Context(), material, keystoreFlags.url, keystoreFlags.key); err != nil {
			return err
		}
		account, err := keys.Account(cmd.Context())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s at %s\n", account.Address, keystoreFlags.url)
		return err
	},
}

func init() {
	secureCmd.Flags().StringVar(&keystoreFlags.url, "url", "", "key store location")
	secureCmd.Flags().StringVar(&keystoreFlags.key, "key", "blowfish://default", "scy encryption key")
	secureCmd.Flags().BoolVar(&keystoreFlags.generate, "generate", false, "generate a new seed")
	keystoreCmd.AddCommand(secureCmd)
	rootCmd.AddCommand(keystoreCmd)
}
