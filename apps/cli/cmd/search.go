package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stepvault/stepvault/packages/suggest"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search variable names",
	Long: `Score every variable name against the query and print the best
matches, strongest first.

Examples:
  stepvault search pr --db run.db
  stepvault search user --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: searchCommand,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum matches to print (default from config)")
}

func searchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagNoColor || cfg.GetNoColor() {
		color.NoColor = true
	}
	exec, backend, err := openExecution(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	matches, err := exec.Search(args[0], limit, suggest.AllSteps)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, m := range matches {
		fmt.Fprintf(out, "%-24s %.2f  %-8s %s\n",
			renderMarks(m.Highlighted), m.Score, m.DataType, m.Preview)
	}
	return nil
}

// renderMarks converts the editor-facing <mark> tags into terminal color.
func renderMarks(s string) string {
	open := strings.Index(s, "<mark>")
	if open < 0 {
		return s
	}
	rest := s[open+len("<mark>"):]
	closing := strings.Index(rest, "</mark>")
	if closing < 0 {
		return s
	}
	hit := color.New(color.FgGreen, color.Bold)
	return s[:open] + hit.Sprint(rest[:closing]) + rest[closing+len("</mark>"):]
}
