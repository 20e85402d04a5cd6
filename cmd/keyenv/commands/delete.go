package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
)

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a secret",
		Long: `Delete a secret from an environment. Deletion is permanent; the value
cannot be recovered, only re-created.

Examples:
  keyenv delete OLD_API_KEY
  keyenv delete OLD_API_KEY --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			projectID, err := cfg.Project(project)
			if err != nil {
				return err
			}
			envName, err := cfg.Environment(environment)
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %s from %s? [y/N]: ", key, envName)
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					cfg.Logger.Info("Aborted")
					return nil
				}
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			if err := client.DeleteSecret(context.Background(), projectID, envName, key); err != nil {
				return kerrors.WrapAPIError("delete", err)
			}

			cfg.Logger.Info("Deleted %s from %s", key, envName)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
