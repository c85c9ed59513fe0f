package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/services/token"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	var subject, email, name, issuer string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token",
		Long:  "Sign an HS256 bearer token with AUTH_SECRET for local development and service calls.",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("AUTH_SECRET")
			if secret == "" {
				return fmt.Errorf("AUTH_SECRET must be set")
			}
			signer, err := token.NewSigner(secret, issuer)
			if err != nil {
				return err
			}
			signed, err := signer.Sign(token.Claims{Subject: subject, Email: email, Name: name, TTL: ttl})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "Subject (user ID) (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&name, "name", "", "Name claim")
	cmd.Flags().StringVar(&issuer, "issuer", token.DefaultIssuer, "Issuer claim")
	cmd.Flags().DurationVar(&ttl, "ttl", token.DefaultTTL, "Token lifetime")
	if err := cmd.MarkFlagRequired("sub"); err != nil {
		panic(fmt.Sprintf("failed to mark sub flag as required: %v", err))
	}
	return cmd
}
