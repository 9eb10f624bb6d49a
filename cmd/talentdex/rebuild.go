package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-embed every stored candidate and print the tallies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRebuild(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command) error {
	cfg, logger, _, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	out, err := a.rebuild.RebuildAll(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	logger.Info("Rebuild complete",
		zap.Int("success", out.Success),
		zap.Int("fail", out.Fail),
		zap.Int("total", out.Total),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]int{
		"success": out.Success,
		"fail":    out.Fail,
		"total":   out.Total,
	}); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
