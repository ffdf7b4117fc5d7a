// Package main implements codectxctl, the command-line driver over the
// Core API in internal/core: ingest, query, stats, find-similar.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/logging"
)

var (
	verbose  bool
	dataDir  string
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codectxctl",
	Short: "codectx - code-context indexing and retrieval engine for AI coding agents",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func loadConfig() *config.Config {
	if configPath == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config %s, using defaults: %v\n", configPath, err)
		return config.DefaultConfig()
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", ".codectx", "store directory for the graph, Bloom snapshot, and logs")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults built in)")

	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "", "source language (python, javascript, typescript, go, rust); required")
	ingestCmd.MarkFlagRequired("language")

	queryCmd.Flags().BoolVar(&queryIncludeDeps, "include-deps", true, "include dependency summaries in the bundle")
	queryCmd.Flags().IntVar(&queryMaxDepth, "max-depth", 2, "dependency traversal depth (1-5)")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 2*time.Second, "query context timeout")

	findSimilarCmd.Flags().IntVar(&findSimilarLimit, "limit", 10, "maximum number of similar artifacts to return (1-50)")

	rootCmd.AddCommand(ingestCmd, queryCmd, statsCmd, findSimilarCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
