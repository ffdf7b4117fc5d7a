package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/codectx/codectx/internal/core"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print repository-wide artifact, edge, and invariant counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := core.Open(dataDir, loadConfig())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer h.Close()

		stats, err := h.Stats()
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}

		fmt.Printf("artifacts: %d\n", stats.ArtifactCount)
		fmt.Printf("depends_on_edges: %d\n", stats.DependsOnEdgeCount)
		fmt.Printf("bloom_estimated_count: %d\n", stats.BloomEstimatedCount)
		fmt.Println("violations_by_severity:")

		severities := make([]string, 0, len(stats.ViolationsBySeverity))
		for sev := range stats.ViolationsBySeverity {
			severities = append(severities, sev)
		}
		sort.Strings(severities)
		for _, sev := range severities {
			fmt.Printf("  %s: %d\n", sev, stats.ViolationsBySeverity[sev])
		}
		return nil
	},
}
