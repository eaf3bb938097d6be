package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/stroked/internal/geom"
	"github.com/ayusman/stroked/internal/gesture"
)

// checkDirectionMinSegment filters sub-jitter segments from the direction
// summary.
const checkDirectionMinSegment = 3.0

var checkCmd = &cobra.Command{
	Use:   "check <gesture-string> [other-gesture-string]",
	Short: "Validate a serialized gesture",
	Long: `Parses a gesture string like "circle:0,0|10,0|10,10" and reports
either its normalized form or exactly where it fails to parse. With a
second gesture, also reports how similar the two shapes are.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	def, err := parseArg(args[0])
	if err != nil {
		return err
	}

	name := def.Name
	if name == "" {
		name = "(unnamed)"
	}
	dirs := gesture.DirectionSequence(def.Points, checkDirectionMinSegment)
	fmt.Printf("name:       %s\n", name)
	fmt.Printf("points:     %d\n", len(def.Points))
	fmt.Printf("length:     %.2f\n", geom.TrackLength(def.Points))
	fmt.Printf("directions: %s\n", formatDirections(dirs))
	fmt.Printf("normalized: %s\n", gesture.SerializeGesture(def))

	if len(args) == 2 {
		other, err := parseArg(args[1])
		if err != nil {
			return err
		}
		otherDirs := gesture.DirectionSequence(other.Points, checkDirectionMinSegment)
		fmt.Printf("similarity: %.2f\n", gesture.DirectionSimilarity(dirs, otherDirs))
	}
	return nil
}

func parseArg(arg string) (gesture.Definition, error) {
	def, err := gesture.ParseGesture(arg)
	if err != nil {
		var parseErr *gesture.ParseError
		if errors.As(err, &parseErr) {
			return def, fmt.Errorf("invalid gesture (%s at point %d): %w",
				parseErr.Kind, parseErr.Index, err)
		}
		return def, err
	}
	return def, nil
}

func formatDirections(dirs []gesture.Direction) string {
	if len(dirs) == 0 {
		return "(none)"
	}
	labels := make([]string, len(dirs))
	for i, d := range dirs {
		labels[i] = d.String()
	}
	return strings.Join(labels, " ")
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
