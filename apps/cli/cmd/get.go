package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var getPath string

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a variable's value",
	Long: `Print a variable's stored value as JSON. With --path, extract part
of the value using gjson path syntax.

Examples:
  stepvault get user --db run.db
  stepvault get user --path address.city
  stepvault get items --path 0.name`,
	Args: cobra.ExactArgs(1),
	RunE: getCommand,
}

func init() {
	getCmd.Flags().StringVar(&getPath, "path", "", "gjson path to extract from the value")
}

func getCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	exec, backend, err := openExecution(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	name := args[0]
	meta, err := exec.GetVariableMetadata(name)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("variable %q not found in execution %s", name, exec.ID())
	}

	data, err := json.MarshalIndent(meta.Value, "", "  ")
	if err != nil {
		return err
	}

	if getPath != "" {
		result := gjson.GetBytes(data, getPath)
		if !result.Exists() {
			return fmt.Errorf("path %q not found in %q", getPath, name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
