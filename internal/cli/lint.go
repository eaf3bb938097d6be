package cli

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/ayusman/stroked/internal/config"
	"github.com/ayusman/stroked/internal/gesture"
	"github.com/ayusman/stroked/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect the profile database",
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check the profile database for problems",
	Long: `Loads the profile database and reports problems a silent match
path would otherwise hide: regex rules that do not compile, bindings to
unknown gestures, and gesture templates that do not parse.`,
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := profile.Load(cfg.Paths.ProfileDB)
	if err != nil {
		return err
	}

	problems := lintDB(&db)
	if len(problems) == 0 {
		fmt.Println("no problems found")
		return nil
	}

	for _, p := range problems {
		fmt.Println(p)
	}
	return fmt.Errorf("%d problem(s) found", len(problems))
}

// lintDB collects every problem in the database. Invalid regexes and
// dangling bindings never match at runtime; lint is where they surface.
func lintDB(db *profile.DB) []string {
	var problems []string

	for id, serialized := range db.Bindings {
		if _, err := gesture.ParseGesture(serialized); err != nil {
			problems = append(problems, fmt.Sprintf("gesture %q: template does not parse: %v", id, err))
		}
	}

	for i := range db.Profiles {
		p := &db.Profiles[i]
		for j, rule := range p.Rules {
			if rule.Matcher != profile.RuleMatcherRegex {
				continue
			}
			if _, err := regexp.Compile(rule.Value); err != nil {
				problems = append(problems, fmt.Sprintf("profile %q rule %d: invalid regex: %v", p.ID, j, err))
			}
		}
		for j, b := range p.Bindings {
			if _, ok := db.Bindings[b.GestureID]; !ok {
				problems = append(problems, fmt.Sprintf("profile %q binding %d: unknown gesture %q", p.ID, j, b.GestureID))
			}
		}
	}

	return problems
}

func init() {
	profilesCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(profilesCmd)
}
