package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	redisclient "github.com/mkrogh/explorerwatch/internal/infra/redis"
	"github.com/mkrogh/explorerwatch/internal/ratelimit"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the rate-limit ledger",
	Long:  `Shows the per-currency failure counts recorded against the explorer APIs. Requires the Redis ledger; the in-memory ledger is process-local.`,
	Run:   runLedger,
}

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the rate-limit ledger",
	Run:   runLedgerClear,
}

func init() {
	ledgerCmd.AddCommand(ledgerClearCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func openLedger() ratelimit.Ledger {
	cfg := loadConfig()

	if cfg.Redis.URL == "" {
		slog.Error("No Redis configured; the ledger only persists with a Redis backend")
		os.Exit(1)
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return ratelimit.NewRedisLedger(client.Raw())
}

func runLedger(cmd *cobra.Command, args []string) {
	ledger := openLedger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := ledger.Entries(ctx)
	if err != nil {
		slog.Error("Failed to read ledger", "error", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("Ledger is empty.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CURRENCY\tFAILURES\tPROVIDER")
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", entry.Currency, entry.Count, entry.Provider)
	}
	_ = w.Flush()
}

func runLedgerClear(cmd *cobra.Command, args []string) {
	ledger := openLedger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ledger.Clear(ctx); err != nil {
		slog.Error("Failed to clear ledger", "error", err)
		os.Exit(1)
	}
	fmt.Println("Ledger cleared.")
}
