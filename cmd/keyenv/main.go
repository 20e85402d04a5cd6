package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/cmd/keyenv/commands"
	"github.com/keyenv/keyenv-go/internal/config"
	"github.com/keyenv/keyenv-go/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Wipe enclaved secret values if the process is interrupted mid-command
	memguard.CatchInterrupt()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		memguard.SafeExit(1)
	}
	memguard.Purge()
}

func run() error {
	// Global flags
	var (
		configFile string
		noColor    bool
		debug      bool
		token      string
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "keyenv",
		Short: "KeyEnv - Manage environment secrets from the command line",
		Long: `keyenv reads and writes secrets in the KeyEnv API, exports them as .env
files, and launches commands with secrets injected as environment variables.

Authentication uses a service token from the KEYENV_TOKEN environment
variable or the --token flag. The token is never stored on disk.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger with parsed flags
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
			cfg.Token = token

			// init creates the config file and completion never reads it
			switch cmd.Name() {
			case "init", "completion", cobra.ShellCompRequestCmd:
				return nil
			}

			// A missing default .keyenv.yaml is fine; commands that need
			// project or environment settings report it themselves.
			_, err := cfg.LoadIfPresent()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default .keyenv.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Service token (defaults to KEYENV_TOKEN)")

	// Add commands
	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewDeleteCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewHistoryCommand(cfg),
		commands.NewEnvironmentsCommand(cfg),
		commands.NewProjectsCommand(cfg),
		commands.NewWhoamiCommand(cfg),
		commands.NewExportCommand(cfg),
		commands.NewRunCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
