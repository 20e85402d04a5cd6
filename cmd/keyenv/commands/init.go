package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
)

const starterConfig = `# KeyEnv project configuration.
# The service token is NOT stored here: set KEYENV_TOKEN or pass --token.

project: %s
environment: %s

# Uncomment to override the API endpoint or request timeout (seconds).
# api_url: https://api.keyenv.dev
# timeout: 30
`

func NewInitCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter .keyenv.yaml",
		Long: `Create a .keyenv.yaml in the current directory with the project and
environment to use by default. The file never contains secrets or tokens,
so it is safe to commit.

Examples:
  keyenv init --project proj_123
  keyenv init --project proj_123 --environment production`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Path
			if path == "" {
				path = config.DefaultPath
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists. Remove it first if you want to reinitialize", path)
			}

			contents := fmt.Sprintf(starterConfig, project, environment)
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			cfg.Logger.Info("Created %s", path)
			cfg.Logger.Info("Set KEYENV_TOKEN to authenticate, then try: keyenv list")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "your-project-id", "Project ID to write into the file")
	cmd.Flags().StringVar(&environment, "environment", "development", "Default environment to write into the file")

	return cmd
}
