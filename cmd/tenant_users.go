// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/principal"
)

var principalsCmd = &cobra.Command{
	Use:   "principals",
	Short: "Manage the principals of a tenant",
}

var (
	principalEmail    string
	principalPassword string
	principalTier     string
)

var listPrincipalsCmd = &cobra.Command{
	Use:   "list [tenant-id]",
	Short: "List the principals of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdminClient()
		if err != nil {
			return err
		}

		principals := make([]*types.Principal, 0)
		if err := client.do(cmd.Context(), http.MethodGet, "/tenants/"+args[0]+"/principals", nil, &principals); err != nil {
			return fmt.Errorf("failed to list principals: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tTIER\tACTIVE\tLAST_LOGIN")
		for _, p := range principals {
			lastLogin := "never"
			if p.LastAuthenticatedAt != nil {
				lastLogin = p.LastAuthenticatedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", p.ID, p.Email, p.Tier, p.Active, lastLogin)
		}
		return w.Flush()
	},
}

var createPrincipalCmd = &cobra.Command{
	Use:   "create [tenant-id]",
	Short: "Provision a principal, refused when the tenant has no room left for the tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdminClient()
		if err != nil {
			return err
		}

		created := new(types.Principal)
		err = client.do(cmd.Context(), http.MethodPost, "/tenants/"+args[0]+"/principals", principal.CreatePrincipalRequest{
			Email:    principalEmail,
			Password: principalPassword,
			Tier:     principalTier,
		}, created)
		if err != nil {
			return fmt.Errorf("failed to create principal: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Principal created: %s (ID: %s, tier: %s)\n", created.Email, created.ID, created.Tier)
		return nil
	},
}

func patchPrincipal(cmd *cobra.Command, id string, req principal.UpdatePrincipalRequest) (*types.Principal, error) {
	client, err := newAdminClient()
	if err != nil {
		return nil, err
	}

	updated := new(types.Principal)
	if err := client.do(cmd.Context(), http.MethodPatch, "/principals/"+id, req, updated); err != nil {
		return nil, fmt.Errorf("failed to update principal: %w", err)
	}

	return updated, nil
}

var deactivatePrincipalCmd = &cobra.Command{
	Use:   "deactivate [principal-id]",
	Short: "Deactivate a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		active := false
		updated, err := patchPrincipal(cmd, args[0], principal.UpdatePrincipalRequest{Active: &active})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Principal deactivated: %s\n", updated.ID)
		return nil
	},
}

var activatePrincipalCmd = &cobra.Command{
	Use:   "activate [principal-id]",
	Short: "Reactivate a principal, refused when its tier is full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		active := true
		updated, err := patchPrincipal(cmd, args[0], principal.UpdatePrincipalRequest{Active: &active})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Principal activated: %s\n", updated.ID)
		return nil
	},
}

var setTierCmd = &cobra.Command{
	Use:   "set-tier [principal-id] [tier]",
	Short: "Move a principal to another account tier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := args[1]
		updated, err := patchPrincipal(cmd, args[0], principal.UpdatePrincipalRequest{Tier: &tier})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Principal %s is now %s\n", updated.ID, updated.Tier)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(principalsCmd)
	principalsCmd.AddCommand(listPrincipalsCmd)
	principalsCmd.AddCommand(createPrincipalCmd)
	principalsCmd.AddCommand(deactivatePrincipalCmd)
	principalsCmd.AddCommand(activatePrincipalCmd)
	principalsCmd.AddCommand(setTierCmd)

	createPrincipalCmd.Flags().StringVar(&principalEmail, "email", "", "Email address of the principal")
	createPrincipalCmd.Flags().StringVar(&principalPassword, "password", "", "Initial password")
	createPrincipalCmd.Flags().StringVar(&principalTier, "tier", string(types.TierSimple), "Account tier: SIMPLE, COMPOSITE or MANAGERIAL")
	_ = createPrincipalCmd.MarkFlagRequired("email")
	_ = createPrincipalCmd.MarkFlagRequired("password")
}
