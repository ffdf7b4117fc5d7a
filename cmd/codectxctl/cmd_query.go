package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codectx/codectx/internal/core"
)

var (
	queryIncludeDeps bool
	queryMaxDepth    int
	queryTimeout     time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query <artifact-id>",
	Short: "retrieve a TOON-formatted context bundle for an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		h, err := core.Open(dataDir, loadConfig())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer h.Close()

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		result, err := h.Query(ctx, id, queryIncludeDeps, queryMaxDepth)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		if !result.BloomHit {
			fmt.Println("not found")
			return nil
		}

		fmt.Println(result.Bundle)
		fmt.Fprintf(cmd.ErrOrStderr(), "files_parsed=%d tokens_estimated=%d duration_ms=%.2f deps_found=%d truncated=%v\n",
			result.FilesParsed, result.TokensEstimated, result.DurationMS, result.DependenciesFound, result.Truncated)
		return nil
	},
}

var findSimilarLimit int

var findSimilarCmd = &cobra.Command{
	Use:   "find-similar <artifact-id>",
	Short: "list artifact ids sharing the given artifact's AST fingerprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := core.Open(dataDir, loadConfig())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer h.Close()

		ids, err := h.FindSimilar(args[0], findSimilarLimit)
		if err != nil {
			return fmt.Errorf("find-similar failed: %w", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}
