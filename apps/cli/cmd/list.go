package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stepvault/stepvault/packages/service"
	"github.com/stepvault/stepvault/packages/suggest"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the variables captured by an execution",
	Long: `List every variable of an execution with its type, producing step
and a short value preview.

Examples:
  stepvault list --db run.db
  stepvault list --db run.db --execution run-42`,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
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

	return printVariables(cmd.OutOrStdout(), exec)
}

func printVariables(w io.Writer, exec *service.Execution) error {
	vars, err := exec.ListVariables()
	if err != nil {
		return err
	}

	header := color.New(color.Bold)
	header.Fprintf(w, "%s (%d variables)\n", exec.ID(), len(vars))

	nameColor := color.New(color.FgCyan)
	typeColor := color.New(color.FgYellow)
	for _, v := range vars {
		nameColor.Fprintf(w, "  %-24s", v.Name)
		typeColor.Fprintf(w, " %-8s", v.DataType)
		fmt.Fprintf(w, " step %-3d %-20s %s\n", v.SourceStepIndex, v.SourceMethod, suggest.Preview(v.Value))
	}
	return nil
}
