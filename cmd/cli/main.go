package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sahmly/engine/internal/infrastructure/config"
	"github.com/sahmly/engine/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	actorID string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sahmly-cli",
		Short: "Sahmly engine back-office CLI",
		Long:  `A command line interface for operating the Sahmly investment engine.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the engine API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "ops-cli", "Actor ID recorded in the audit trail")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(distributeCmd())
	rootCmd.AddCommand(settleCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fatal("failed to load configuration: %v", err)
			}
			if err := postgres.RunMigrations(cfg.DatabaseURL, path); err != nil {
				fatal("%v", err)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fatal("failed to load configuration: %v", err)
			}
			if err := postgres.RunMigrationsDown(cfg.DatabaseURL, path); err != nil {
				fatal("%v", err)
			}
		},
	})

	return cmd
}

func distributeCmd() *cobra.Command {
	var propertyID, periodID string
	var amount int64

	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Run a pro-rata income distribution",
		Run: func(cmd *cobra.Command, args []string) {
			result := post("/api/v1/admin/distributions", map[string]any{
				"property_id":  propertyID,
				"period_id":    periodID,
				"total_amount": amount,
			})
			fmt.Printf("Distribution complete\n")
			fmt.Printf("  Distributed: %v cents across %v investors\n", result["distributed_cents"], result["investors_paid"])
			fmt.Printf("  Remainder:   %v cents retained\n", result["remainder_cents"])
		},
	}

	cmd.Flags().StringVar(&propertyID, "property", "", "Property ID")
	cmd.Flags().StringVar(&periodID, "period", "", "Period identifier, e.g. 2026-Q3")
	cmd.Flags().Int64Var(&amount, "amount", 0, "Total amount to distribute in cents")
	cmd.MarkFlagRequired("property")
	cmd.MarkFlagRequired("period")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func settleCmd() *cobra.Command {
	var outcome, reference string

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle pending transactions and investments",
	}
	cmd.PersistentFlags().StringVar(&outcome, "outcome", "completed", "Settlement outcome: completed, failed or cancelled")

	transactionCmd := &cobra.Command{
		Use:   "transaction <id>",
		Short: "Settle a pending deposit or withdrawal",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := post("/api/v1/admin/transactions/"+args[0]+"/settle", map[string]any{
				"outcome": outcome,
			})
			fmt.Printf("Transaction %s settled: %v\n", args[0], result["status"])
		},
	}

	investmentCmd := &cobra.Command{
		Use:   "investment <id>",
		Short: "Settle a pending external-payment investment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := post("/api/v1/admin/investments/"+args[0]+"/settle", map[string]any{
				"outcome":           outcome,
				"payment_reference": reference,
			})
			fmt.Printf("Investment %s settled: %v\n", args[0], result["status"])
		},
	}
	investmentCmd.Flags().StringVar(&reference, "reference", "", "External payment reference")

	cmd.AddCommand(transactionCmd)
	cmd.AddCommand(investmentCmd)

	return cmd
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Replay wallet ledgers against cached balances",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				result := post("/api/v1/admin/accounts/"+args[0]+"/reconcile", nil)
				printReconciliation(result)
				return
			}

			result := post("/api/v1/admin/reconcile", nil)
			fmt.Printf("Checked %v accounts, %v reconciled\n", result["total_accounts"], result["reconciled_accounts"])
			if discrepancies, ok := result["discrepancies"].([]any); ok && len(discrepancies) > 0 {
				fmt.Printf("DISCREPANCIES FOUND: %d\n", len(discrepancies))
				for _, d := range discrepancies {
					if m, ok := d.(map[string]any); ok {
						printReconciliation(m)
					}
				}
				os.Exit(1)
			}
		},
	}

	return cmd
}

func printReconciliation(m map[string]any) {
	if reconciled, ok := m["is_reconciled"].(bool); ok && reconciled {
		fmt.Printf("Account %v reconciled (balance %v)\n", m["account_id"], m["recorded_balance"])
		return
	}
	fmt.Printf("Account %v DRIFTED: recorded %v, replayed %v (frozen: %v)\n",
		m["account_id"], m["recorded_balance"], m["replayed_balance"], m["frozen_by_this_scan"])
}

func post(path string, body map[string]any) map[string]any {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fatal("failed to encode request: %v", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, payload)
	if err != nil {
		fatal("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", actorID)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fatal("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		fatal("request failed (status %d): %s", resp.StatusCode, string(data))
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		fatal("failed to parse response: %v", err)
	}

	return result
}

func fatal(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
