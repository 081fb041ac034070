package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrogh/explorerwatch/internal/core/config"
	"github.com/mkrogh/explorerwatch/internal/explorer"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [currency] [address]",
	Short: "Fetch and print the transactions touching an address",
	Args:  cobra.ExactArgs(2),
	Run:   runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func currencyConfig(cfg *config.AppConfig, code string) (config.CurrencyConfig, bool) {
	for _, cur := range cfg.Currencies {
		if strings.EqualFold(cur.Code, code) {
			return cur, true
		}
	}
	return config.CurrencyConfig{}, false
}

func newExplorerClient(cur config.CurrencyConfig) *explorer.Client {
	opts := explorer.Options{Logger: slog.Default()}
	if cur.CustomURL != "" {
		opts.BaseURLs = map[string]string{cur.Provider: cur.CustomURL}
	}
	return explorer.New(opts)
}

func runFetch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	cur, ok := currencyConfig(cfg, args[0])
	if !ok {
		slog.Error("Currency not configured", "currency", args[0])
		os.Exit(1)
	}
	address := args[1]

	client := newExplorerClient(cur)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	txs, err := client.FetchTransactions(ctx, address, cur.Code, cur.Provider)
	if err != nil {
		slog.Error("Fetch failed", "error", err)
		os.Exit(1)
	}

	if len(txs) == 0 {
		fmt.Println("No activity on this address.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TXID\tTIME\tCONFIRMATIONS\tOUTPUTS")
	for _, tx := range txs {
		outputs := make([]string, 0, len(tx.Outputs))
		for _, out := range tx.Outputs {
			outputs = append(outputs, fmt.Sprintf("%s=%g", out.Address, out.Amount))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			tx.TxID,
			time.Unix(tx.Time, 0).UTC().Format(time.RFC3339),
			tx.Confirmations,
			strings.Join(outputs, ","),
		)
	}
	_ = w.Flush()
}
