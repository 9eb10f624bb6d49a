package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/config"
	logpkg "github.com/kailas-cloud/talentdex/internal/logger"
)

const app = "talentdex"

var envName string

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "talentdex is a candidate store with semantic search over profiles and résumés",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "",
		"config environment: config/<env>.yaml (default is $ENV or local)")
}

// loadRuntime reads the config for the selected environment and builds the logger.
func loadRuntime() (config.Config, *zap.Logger, string, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, env, nil
}
