// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

// tokenSpec is the subset of the server environment needed to sign and verify tokens offline.
type tokenSpec struct {
	TokenSigningKey string        `envconfig:"token_signing_key" required:"true"`
	TokenIssuer     string        `envconfig:"token_issuer" default:"practice-service"`
	AccessTokenTTL  time.Duration `envconfig:"access_token_ttl" default:"24h"`
	RefreshTokenTTL time.Duration `envconfig:"refresh_token_ttl" default:"720h"`
}

var (
	tokenPrincipalID string
	tokenTenantID    string
	tokenTier        string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and inspect tokens with the server signing key",
}

func offlineTokenService() (*authentication.TokenService, error) {
	specs := new(tokenSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %w", err)
	}

	return authentication.NewTokenService(
		authentication.TokenConfig{
			SigningKey: []byte(specs.TokenSigningKey),
			Issuer:     specs.TokenIssuer,
			AccessTTL:  specs.AccessTokenTTL,
			RefreshTTL: specs.RefreshTokenTTL,
		},
		nil,
		nil,
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("practice-service"),
		logging.NewNoopLogger(),
	)
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a token pair without checking the principal or its tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := offlineTokenService()
		if err != nil {
			return err
		}

		pair, err := tokens.Issue(cmd.Context(), tokenPrincipalID, tokenTenantID, types.AccountTier(tokenTier))
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pair)
	},
}

var inspectTokenCmd = &cobra.Command{
	Use:   "inspect [token]",
	Short: "Verify a token and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := offlineTokenService()
		if err != nil {
			return err
		}

		claims, err := tokens.Verify(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(claims)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(issueTokenCmd)
	tokenCmd.AddCommand(inspectTokenCmd)

	issueTokenCmd.Flags().StringVar(&tokenPrincipalID, "principal-id", "", "Subject of the token")
	issueTokenCmd.Flags().StringVar(&tokenTenantID, "tenant-id", "", "Tenant of the principal")
	issueTokenCmd.Flags().StringVar(&tokenTier, "tier", string(types.TierSimple), "Account tier carried by the token")
	_ = issueTokenCmd.MarkFlagRequired("principal-id")
	_ = issueTokenCmd.MarkFlagRequired("tenant-id")
}
