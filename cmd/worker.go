package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run apart from the HTTP server.`,
}

var sweeperWorkerCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Run the session reconciliation and account purge sweeps",
	Long:  `Close expired login sessions and purge accounts whose deletion grace period has elapsed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startSweeper(cmd)
	},
}

var (
	sweepOnce       bool
	sessionInterval time.Duration
	purgeInterval   time.Duration
)

func startSweeper(cmd *cobra.Command) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := initLogger(config)

	db, gdb, err := openDatabase(config, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	app := NewApp(config, gdb, lg)
	defer app.Close()

	ctx := context.Background()

	if sweepOnce {
		closed, err := app.Sessions.ReconcileExpired(ctx)
		if err != nil {
			return fmt.Errorf("session reconciliation: %w", err)
		}
		purged, err := app.Accounts.PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("account purge: %w", err)
		}
		lg.Info("sweep finished", "sessions_closed", closed, "accounts_purged", purged)
		return nil
	}

	lifecycle := config.Lifecycle
	if getDurationFlag(cmd, "session-interval") > 0 {
		lifecycle.SessionSweepInterval = sessionInterval
	}
	if getDurationFlag(cmd, "purge-interval") > 0 {
		lifecycle.PurgeSweepInterval = purgeInterval
	}

	sched := app.SchedulerWithIntervals(lifecycle)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	lg.Info("sweeper started",
		"session_interval", lifecycle.SessionSweepInterval,
		"purge_interval", lifecycle.PurgeSweepInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	lg.Info("shutting down sweeper", "signal", sig)
	sched.Stop()
	return nil
}

func getDurationFlag(cmd *cobra.Command, name string) time.Duration {
	if !cmd.Flags().Changed(name) {
		return 0
	}
	d, _ := cmd.Flags().GetDuration(name)
	return d
}

func init() {
	sweeperWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run each sweep a single time and exit")
	sweeperWorkerCmd.Flags().DurationVar(&sessionInterval, "session-interval", 0, "Override the session reconciliation interval")
	sweeperWorkerCmd.Flags().DurationVar(&purgeInterval, "purge-interval", 0, "Override the account purge interval")

	workerCmd.AddCommand(sweeperWorkerCmd)
}
