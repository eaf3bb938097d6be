package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/stroked/internal/config"
	"github.com/ayusman/stroked/internal/library"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show gesture library health statistics",
	Long: `Loads the token gesture library and prints health counters:
gestures with no enabled bindings, duplicate token sequences, and disabled
gestures, along with the conflict groups behind them.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lib, err := library.Load(cfg.Paths.Library)
	if err != nil {
		return err
	}

	output := struct {
		Stats     library.Stats      `json:"stats"`
		Conflicts []library.Conflict `json:"conflicts,omitempty"`
	}{
		Stats:     lib.ComputeStats(),
		Conflicts: lib.FindConflicts(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
