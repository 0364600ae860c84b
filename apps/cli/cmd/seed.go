package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stepvault/stepvault/packages/service"
	"github.com/stepvault/stepvault/packages/store"
)

// seedFile is the YAML document the seed command consumes.
type seedFile struct {
	Execution string `yaml:"execution"`
	Variables []struct {
		Name   string `yaml:"name"`
		Step   int    `yaml:"step"`
		Method string `yaml:"method"`
		Value  any    `yaml:"value"`
	} `yaml:"variables"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load variables into a database from a YAML file",
	Long: `Populate an execution with variables described in a YAML file.
Useful for trying editor tooling against realistic data without running a
full execution.

Example file:
  execution: demo-run
  variables:
    - name: user
      step: 0
      method: seed
      value:
        name: Zhang
        age: 30`,
	Args: cobra.ExactArgs(1),
	RunE: seedCommand,
}

func seedCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if file.Execution == "" {
		return fmt.Errorf("%s: missing execution id", args[0])
	}

	// seed creates the database when absent
	backend, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	exec, err := service.NewExecution(file.Execution, backend, service.Config{})
	if err != nil {
		return err
	}

	for _, v := range file.Variables {
		method := v.Method
		if method == "" {
			method = "seed"
		}
		if err := exec.StoreVariable(v.Name, v.Value, v.Step, method, nil); err != nil {
			return fmt.Errorf("storing %q: %w", v.Name, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d variables into execution %s (%s)\n",
		len(file.Variables), file.Execution, cfg.DatabasePath)
	return nil
}
