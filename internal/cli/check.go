package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/ethalive/internal/control"
	"github.com/vietddude/ethalive/internal/core/config"
	"github.com/vietddude/ethalive/internal/infra/notify"
)

var checkAlert bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single health check and exit non-zero if the node is unhealthy",
	Long: `Run a single health check and exit non-zero if the node is unhealthy.

Alerts are not delivered by default: each invocation starts without
cooldown state, so repeated runs would bypass the alert cooldown.
Use --alert to dispatch the webhook anyway.`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkAlert, "alert", false, "Deliver the webhook alert if the node is unhealthy")
	rootCmd.AddCommand(checkCmd)
}

// newCheckApp builds the app for a one-shot check. Without alert the
// webhook is replaced by notify.Nop.
func newCheckApp(cfg *config.AppConfig, alert bool) (*control.App, error) {
	if alert {
		return control.NewApp(cfg)
	}
	return control.NewApp(cfg, control.WithNotifier(notify.Nop{}))
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := newCheckApp(cfg, checkAlert)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	check := app.RunOnce(context.Background())
	fmt.Printf("verdict=%s local=%d remote=%d lag=%d",
		check.Verdict, check.LocalHeight, check.RemoteHeight, check.Lag)
	if checkAlert {
		fmt.Printf(" alert=%s", check.Alert)
	}
	fmt.Println()
	if check.Cause != "" {
		fmt.Printf("cause: %s\n", check.Cause)
	}

	if !check.Healthy() {
		app.Close()
		os.Exit(1)
	}
}
