// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kelseyhightower/envconfig"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/practice-service/migrations"
)

// migrateSpec lets the migrate command share the DSN variable with serve.
type migrateSpec struct {
	DSN string `envconfig:"DSN"`
}

// migrateCmd performs DB migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [version]|status|check]",
	Short: "Run database migrations",
	Long:  `Run the embedded goose migrations for tenants, principals, audit records and practice resources`,
	Args:  migrateArgs,
	RunE:  runMigrate,
}

var (
	migrateDSN    string
	migrateFormat string
)

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "status", "check":
		if len(args) == 2 {
			return fmt.Errorf("%q takes no version argument", args[0])
		}
	case "down":
		if len(args) == 2 {
			if version, err := strconv.Atoi(args[1]); err != nil || version < 0 {
				return fmt.Errorf("invalid version number: %q", args[1])
			}
		}
	default:
		return fmt.Errorf("invalid migrate command: %q", args[0])
	}

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	version := int64(-1)
	if len(args) > 1 {
		version, _ = strconv.ParseInt(args[1], 10, 64)
	}

	if migrateFormat != "text" && migrateFormat != "json" {
		return fmt.Errorf("unsupported output format %q", migrateFormat)
	}

	dsn := migrateDSN
	if dsn == "" {
		specs := new(migrateSpec)
		if err := envconfig.Process("", specs); err != nil {
			return fmt.Errorf("issues with environment sourcing: %w", err)
		}
		dsn = specs.DSN
	}
	if dsn == "" {
		return fmt.Errorf("a DSN is required, use --dsn or DSN")
	}

	db, err := openMigrationDB(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []goose.ProviderOption
	if migrateFormat == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch command {
	case "down":
		return runDown(ctx, provider, version, out)
	case "status":
		return runStatus(ctx, provider, out)
	case "check":
		return runCheck(ctx, provider, out)
	default:
		return runUp(ctx, provider, out)
	}
}

func openMigrationDB(ctx context.Context, dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed: %w", err)
	}

	db := stdlib.OpenDB(*config)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("DB connection failed: %w", err)
	}

	return db, nil
}

func printResults(out io.Writer, results []*goose.MigrationResult) error {
	if results == nil {
		results = []*goose.MigrationResult{}
	}

	if migrateFormat == "json" {
		return json.NewEncoder(out).Encode(map[string]any{"applied": results})
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No migrations to apply")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(out, "%-6s %s (%s)\n", r.Direction, r.Source.Path, r.Duration.Round(time.Millisecond))
	}
	return nil
}

func runUp(ctx context.Context, provider *goose.Provider, out io.Writer) error {
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}

	return printResults(out, results)
}

func runDown(ctx context.Context, provider *goose.Provider, version int64, out io.Writer) error {
	if version < 0 {
		result, err := provider.Down(ctx)
		if err != nil {
			return err
		}
		return printResults(out, []*goose.MigrationResult{result})
	}

	results, err := provider.DownTo(ctx, version)
	if err != nil {
		return err
	}

	return printResults(out, results)
}

func runStatus(ctx context.Context, provider *goose.Provider, out io.Writer) error {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return err
	}

	if migrateFormat == "json" {
		return json.NewEncoder(out).Encode(statuses)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "APPLIED_AT\tMIGRATION")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", appliedAt, s.Source.Path)
	}
	return w.Flush()
}

func runCheck(ctx context.Context, provider *goose.Provider, out io.Writer) error {
	hasPending, err := provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	status := "ok"
	if hasPending {
		status = "pending"
	}

	if migrateFormat == "json" {
		if err := json.NewEncoder(out).Encode(map[string]any{"status": status, "version": current}); err != nil {
			return err
		}
	} else if !hasPending {
		fmt.Fprintf(out, "Database is up to date (version %d)\n", current)
	}

	if hasPending {
		return fmt.Errorf("migrations are pending: current version %d", current)
	}
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDSN, "dsn", "", "PostgreSQL DSN connection string, defaults to the DSN environment variable")
	migrateCmd.Flags().StringVarP(&migrateFormat, "format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}
