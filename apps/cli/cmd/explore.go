package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stepvault/stepvault/packages/suggest"
)

var exploreDepth int

var exploreCmd = &cobra.Command{
	Use:   "explore <name>",
	Short: "Walk a variable's nested properties",
	Long: `Print the property tree of a variable down to a depth, with the
${...} path of every node. Arrays show an exemplar element at index 0.

Examples:
  stepvault explore user --db run.db
  stepvault explore order --depth 5`,
	Args: cobra.ExactArgs(1),
	RunE: exploreCommand,
}

func init() {
	exploreCmd.Flags().IntVar(&exploreDepth, "depth", 0, "maximum depth to walk (default from config)")
}

func exploreCommand(cmd *cobra.Command, args []string) error {
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

	depth := exploreDepth
	if depth <= 0 {
		depth = cfg.ExploreDepth
	}

	nodes, err := exec.ExploreProperties(args[0], depth)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.Bold).Fprintf(out, "%s\n", args[0])
	printNodes(out, nodes, 1)
	return nil
}

func printNodes(w io.Writer, nodes []*suggest.PropertyNode, indent int) {
	nameColor := color.New(color.FgCyan)
	typeColor := color.New(color.FgYellow)
	pathColor := color.New(color.Faint)
	for _, n := range nodes {
		fmt.Fprint(w, strings.Repeat("  ", indent))
		nameColor.Fprint(w, n.Name)
		typeColor.Fprintf(w, " (%s)", n.Type)
		fmt.Fprintf(w, " %s ", n.Preview)
		pathColor.Fprintf(w, "${%s}\n", n.Path)
		printNodes(w, n.Properties, indent+1)
	}
}
