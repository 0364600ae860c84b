package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepvault/stepvault/packages/service"
)

var (
	exportOutput string
	exportSchema string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an execution's variables as JSON",
	Long: `Write the execution's full variable set, with metadata, to a JSON
document for archival or offline inspection. With --schema, the document is
validated against a JSON schema before being written.

Examples:
  stepvault export --db run.db --output run-42.json
  stepvault export --schema export.schema.json`,
	RunE: exportCommand,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write (stdout when omitted)")
	exportCmd.Flags().StringVar(&exportSchema, "schema", "", "JSON schema to validate the export against")
}

func exportCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	exec, backend, err := openExecution(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	doc, err := exec.ExportVariables()
	if err != nil {
		return err
	}

	if exportSchema != "" {
		schemaJSON, err := os.ReadFile(exportSchema)
		if err != nil {
			return fmt.Errorf("reading schema: %w", err)
		}
		if err := service.ValidateExport(doc, schemaJSON); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if exportOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d variables to %s\n", len(doc.Variables), exportOutput)
	return nil
}
