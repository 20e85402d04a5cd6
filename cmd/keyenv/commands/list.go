package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List secrets in an environment",
		Long: `List the secrets in an environment. Only metadata is shown; values are
never printed. Use 'keyenv get <key>' to read a value.

Examples:
  keyenv list
  keyenv list --environment staging --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			secrets, err := client.ListSecrets(context.Background(), projectID, envName)
			if err != nil {
				return kerrors.WrapAPIError("list", err)
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(secrets)
			}

			if len(secrets) == 0 {
				fmt.Printf("No secrets in %s\n", envName)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVERSION\tTYPE\tUPDATED")
			for _, secret := range secrets {
				secretType := secret.Type
				if secretType == "" {
					secretType = "-"
				}
				updated := secret.UpdatedAt
				if updated == "" {
					updated = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", secret.Key, secret.Version, secretType, updated)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
