package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/stepvault/stepvault/packages/service"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-list variables whenever the database changes",
	Long: `Watch the variable database and print the execution's variables
after every write. Handy for following a live execution while debugging an
automation run. Stop with Ctrl-C.

Example:
  stepvault watch --db run.db --execution run-42`,
	RunE: watchCommand,
}

func watchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	id, err := resolveExecution(backend)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// watch the directory: SQLite in WAL mode writes sidecar files
	if err := watcher.Add(filepath.Dir(cfg.DatabasePath)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reload := func() {
		exec, err := service.NewExecution(id, backend, service.Config{})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		if err := printVariables(out, exec); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
	reload()

	base := filepath.Base(cfg.DatabasePath)
	// coalesce bursts of write events into one reload
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base && filepath.Base(event.Name) != base+"-wal" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(200 * time.Millisecond)
			}
		case <-pending:
			pending = nil
			fmt.Fprintln(out)
			reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}
