package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/auth"
)

// buildTokenCmd creates the "token" command group for minting development
// credentials. Production tokens come from the issuing service; these are
// for local testing only.
func buildTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint development credentials",
	}
	cmd.AddCommand(buildTokenUserCmd(), buildTokenServiceCmd())
	return cmd
}

func buildTokenUserCmd() *cobra.Command {
	var (
		secret  string
		subject string
		scopes  []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Issue a delegated-user bearer token",
		Example: `  steward token user --secret s3cret --subject u1 --scope accounts:read --scope accounts:write`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || subject == "" {
				return fmt.Errorf("--secret and --subject are required")
			}
			token, err := auth.IssueDelegatedToken(secret, subject, scopes, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret (must match auth.jwt_secret)")
	cmd.Flags().StringVar(&subject, "subject", "", "User id for the token subject")
	cmd.Flags().StringArrayVar(&scopes, "scope", nil, "Scope to grant (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func buildTokenServiceCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:     "service",
		Short:   "Mint a direct-service token bound to one account",
		Example: `  steward token service --account acct-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				return fmt.Errorf("--account is required")
			}
			body := make([]byte, 16)
			if _, err := rand.Read(body); err != nil {
				return err
			}
			token, err := auth.MintServiceToken(account, hex.EncodeToString(body))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account id the token is bound to")
	return cmd
}
