package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	redisclient "github.com/vietddude/ethalive/internal/infra/redis"
	"github.com/vietddude/ethalive/internal/infra/storage/postgres"
)

var historyLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last published verdict and recent check history",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of history rows to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Redis.URL == "" && cfg.Database.URL == "" {
		slog.Error("status needs redis.url or database.url to be configured")
		os.Exit(1)
	}

	if cfg.Redis.URL != "" {
		showSnapshot(ctx, cfg.Redis)
	}
	if cfg.Database.URL != "" {
		showHistory(ctx, cfg.Database)
	}
}

func showSnapshot(ctx context.Context, cfg redisclient.Config) {
	client, err := redisclient.NewClient(cfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		return
	}
	defer func() {
		_ = client.Close()
	}()

	check, err := client.GetStatus(ctx)
	if errors.Is(err, redisclient.ErrNoStatus) {
		fmt.Println("No status snapshot published yet")
		return
	}
	if err != nil {
		slog.Error("Failed to read status", "error", err)
		return
	}

	fmt.Printf("Last check: %s (%s ago)\n", check.CheckedAt.Format(time.RFC3339),
		time.Since(check.CheckedAt).Round(time.Second))
	fmt.Printf("Verdict:    %s\n", check.Verdict)
	fmt.Printf("Local:      %d\n", check.LocalHeight)
	fmt.Printf("Remote:     %d\n", check.RemoteHeight)
	if check.Cause != "" {
		fmt.Printf("Cause:      %s\n", check.Cause)
	}

	counts, err := client.VerdictCounts(ctx)
	if err == nil && len(counts) > 0 {
		fmt.Println("Verdict counts:")
		for kind, n := range counts {
			fmt.Printf("  %-20s %d\n", kind, n)
		}
	}
	fmt.Println()
}

func showHistory(ctx context.Context, cfg postgres.Config) {
	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return
	}
	defer func() {
		_ = db.Close()
	}()

	repo := postgres.NewCheckRepo(db)
	checks, err := repo.Recent(ctx, historyLimit)
	if err != nil {
		slog.Error("Failed to query history", "error", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECKED AT\tVERDICT\tLOCAL\tREMOTE\tLAG\tALERT")
	for _, c := range checks {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			c.CheckedAt.Format(time.RFC3339), c.Verdict, c.LocalHeight, c.RemoteHeight, c.Lag, c.Alert)
	}
	_ = w.Flush()

	last, err := repo.LastAlert(ctx)
	if err == nil && last != nil {
		fmt.Printf("\nLast alert: %s (%s)\n", last.CheckedAt.Format(time.RFC3339), last.Verdict)
	}
}
