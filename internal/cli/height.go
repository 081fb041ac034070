package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var heightCmd = &cobra.Command{
	Use:   "height [currency]",
	Short: "Print the current chain height reported by the explorer",
	Args:  cobra.ExactArgs(1),
	Run:   runHeight,
}

func init() {
	rootCmd.AddCommand(heightCmd)
}

func runHeight(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	cur, ok := currencyConfig(cfg, args[0])
	if !ok {
		slog.Error("Currency not configured", "currency", args[0])
		os.Exit(1)
	}

	client := newExplorerClient(cur)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	height := client.CurrentHeight(ctx, cur.Code, cur.Provider)
	if height == 0 {
		slog.Error("Chain height unavailable", "currency", cur.Code)
		os.Exit(1)
	}

	fmt.Println(height)
}
