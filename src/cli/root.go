package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the root cobra command for ptero-backup. With no mode
// flag it runs the scheduler; --backup, --restore, and --list-snapshots run
// a single job and exit.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "ptero-backup",
		Short:         "Scheduled backups and restores for Pterodactyl game servers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), stdout, opts)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVar(&opts.configPath, "config", "config.yaml", "Path to the configuration file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.Flags().BoolVar(&opts.backup, "backup", false, "Run one backup job and exit")
	cmd.Flags().BoolVar(&opts.restore, "restore", false, "Restore a snapshot and exit")
	cmd.Flags().BoolVar(&opts.list, "list-snapshots", false, "List available snapshots for a server and exit")
	cmd.Flags().StringVar(&opts.serverID, "server-id", "", "Server ID for backup/restore/list operations")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "Snapshot name for the restore operation")
	cmd.Flags().BoolVar(&opts.forceShutdown, "shutdown", false, "Force the shutdown-during-backup policy for this invocation")

	return cmd
}

// Execute runs the CLI with the process stdio and returns the exit code.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
