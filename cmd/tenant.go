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
	"github.com/canonical/practice-service/pkg/tenant"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var (
	subscriptionTier string
	expiresAt        string
	maxSimple        int64
	maxComposite     int64
	maxManagerial    int64
)

func limitsFromFlags() *tenant.LimitsRequest {
	return &tenant.LimitsRequest{
		MaxSimpleAccounts:     maxSimple,
		MaxCompositeAccounts:  maxComposite,
		MaxManagerialAccounts: maxManagerial,
	}
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("expiry must be an RFC 3339 timestamp: %w", err)
	}

	return &t, nil
}

func formatLimit(limit int64) string {
	if limit == types.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", limit)
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.RFC3339)
}

var createTenantCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdminClient()
		if err != nil {
			return err
		}

		expiry, err := parseExpiry(expiresAt)
		if err != nil {
			return err
		}

		created := new(types.Tenant)
		err = client.do(cmd.Context(), http.MethodPost, "/tenants", tenant.CreateTenantRequest{
			Name:             args[0],
			SubscriptionTier: subscriptionTier,
			ExpiresAt:        expiry,
			Limits:           limitsFromFlags(),
		}, created)
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant created: %s (ID: %s)\n", created.Name, created.ID)
		return nil
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdminClient()
		if err != nil {
			return err
		}

		tenants := make([]*types.Tenant, 0)
		if err := client.do(cmd.Context(), http.MethodGet, "/tenants", nil, &tenants); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACTIVE\tEXPIRES_AT\tSIMPLE\tCOMPOSITE\tMANAGERIAL")
		for _, t := range tenants {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\t%s\t%s\n",
				t.ID, t.Name, t.Active, formatExpiry(t.ExpiresAt),
				formatLimit(t.Limits.MaxSimpleAccounts),
				formatLimit(t.Limits.MaxCompositeAccounts),
				formatLimit(t.Limits.MaxManagerialAccounts),
			)
		}
		return w.Flush()
	},
}

func setActive(active bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newAdminClient()
		if err != nil {
			return err
		}

		err = client.do(cmd.Context(), http.MethodPatch, "/tenants/"+args[0], tenant.UpdateTenantRequest{Active: &active}, nil)
		if err != nil {
			return fmt.Errorf("failed to update tenant: %w", err)
		}

		state := "deactivated"
		if active {
			state = "activated"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tenant %s: %s\n", state, args[0])
		return nil
	}
}

var activateTenantCmd = &cobra.Command{
	Use:   "activate [id]",
	Short: "Activate a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  setActive(true),
}

var deactivateTenantCmd = &cobra.Command{
	Use:   "deactivate [id]",
	Short: "Deactivate a tenant, its principals are refused from their next request",
	Args:  cobra.ExactArgs(1),
	RunE:  setActive(false),
}

var updateTenantCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update the subscription, expiry or account limits of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAdminClient()
		if err != nil {
			return err
		}

		req := tenant.UpdateTenantRequest{}

		if cmd.Flags().Changed("subscription-tier") {
			req.SubscriptionTier = &subscriptionTier
		}
		if cmd.Flags().Changed("expires-at") {
			if expiresAt == "" {
				req.ClearExpiry = true
			} else if req.ExpiresAt, err = parseExpiry(expiresAt); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("max-simple") || cmd.Flags().Changed("max-composite") || cmd.Flags().Changed("max-managerial") {
			current := new(types.Tenant)
			if err := client.do(cmd.Context(), http.MethodGet, "/tenants/"+args[0], nil, current); err != nil {
				return fmt.Errorf("failed to get tenant: %w", err)
			}

			// Unchanged flags keep the current capacity.
			req.Limits = &tenant.LimitsRequest{
				MaxSimpleAccounts:     current.Limits.MaxSimpleAccounts,
				MaxCompositeAccounts:  current.Limits.MaxCompositeAccounts,
				MaxManagerialAccounts: current.Limits.MaxManagerialAccounts,
			}
			if cmd.Flags().Changed("max-simple") {
				req.Limits.MaxSimpleAccounts = maxSimple
			}
			if cmd.Flags().Changed("max-composite") {
				req.Limits.MaxCompositeAccounts = maxComposite
			}
			if cmd.Flags().Changed("max-managerial") {
				req.Limits.MaxManagerialAccounts = maxManagerial
			}
		}

		updated := new(types.Tenant)
		if err := client.do(cmd.Context(), http.MethodPatch, "/tenants/"+args[0], req, updated); err != nil {
			return fmt.Errorf("failed to update tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant updated: %s\n", updated.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(activateTenantCmd)
	tenantCmd.AddCommand(deactivateTenantCmd)
	tenantCmd.AddCommand(updateTenantCmd)

	for _, c := range []*cobra.Command{createTenantCmd, updateTenantCmd} {
		c.Flags().StringVar(&subscriptionTier, "subscription-tier", "", "Subscription plan name")
		c.Flags().StringVar(&expiresAt, "expires-at", "", "Subscription expiry (RFC 3339), empty clears it on update")
		c.Flags().Int64Var(&maxSimple, "max-simple", types.Unlimited, "Maximum active SIMPLE principals, -1 for unlimited")
		c.Flags().Int64Var(&maxComposite, "max-composite", types.Unlimited, "Maximum active COMPOSITE principals, -1 for unlimited")
		c.Flags().Int64Var(&maxManagerial, "max-managerial", types.Unlimited, "Maximum active MANAGERIAL principals, -1 for unlimited")
	}
}
