package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
	"github.com/keyenv/keyenv-go/pkg/keyenv"
)

func NewExportCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
		outputPath  string
		permissions string
		toStdout    bool
	)

	cmd := &cobra.Command{
		Use:   "export --out <file>",
		Short: "Export an environment to a .env file",
		Long: `Fetch every secret in an environment, including inherited values, and
write them as a .env file.

Values containing spaces, quotes, or newlines are quoted and escaped so the
file stays parseable. The file is written with mode 0600 by default. Use
--stdout to print the rendered file instead of writing it, for piping into
other tools.

Examples:
  keyenv export --out .env
  keyenv export --environment staging --out .env.staging
  keyenv export --out .env --permissions 0644
  keyenv export --stdout | grep DATABASE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Require the explicit opt-in before anything touches disk
			if !toStdout && outputPath == "" {
				return fmt.Errorf("--out flag is required for security (explicit opt-in to write files)")
			}

			var perms os.FileMode = 0600
			if permissions != "" {
				n, err := fmt.Sscanf(permissions, "%o", &perms)
				if err != nil || n != 1 {
					return fmt.Errorf("invalid permissions format, use octal like '0644'")
				}
			}

			projectID, err := cfg.Project(project)
			if err != nil {
				return err
			}
			envName, err := cfg.Environment(environment)
			if err != nil {
				return err
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			secrets, err := client.GetSecrets(context.Background(), projectID, envName)
			if err != nil {
				return kerrors.WrapAPIError("export", err)
			}

			pairs := make([]keyenv.EnvPair, 0, len(secrets))
			for _, secret := range secrets {
				pairs = append(pairs, keyenv.EnvPair{Key: secret.Key, Value: secret.Value})
			}

			contents := keyenv.RenderEnvFile(envName, pairs)

			if toStdout {
				fmt.Print(contents)
				return nil
			}

			if err := os.WriteFile(outputPath, []byte(contents), perms); err != nil {
				return kerrors.UserError{
					Message:    fmt.Sprintf("Failed to write %s", outputPath),
					Details:    err.Error(),
					Suggestion: "Check directory permissions and available disk space",
					Err:        err,
				}
			}

			cfg.Logger.Info("Wrote %d secrets to %s", len(pairs), outputPath)

			// Security reminder
			cfg.Logger.Warn("File contains secrets - ensure it's added to .gitignore")

			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&outputPath, "out", "", "Output file path (required unless --stdout)")
	cmd.Flags().StringVar(&permissions, "permissions", "0600", "File permissions in octal (default: 0600)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the rendered file to stdout instead of writing it")

	return cmd
}
