package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a single secret value",
		Long: `Retrieve and print a single secret value.

By default only the raw value is printed, making it suitable for scripting.
Use --json for the full secret record with metadata.

Examples:
  # Get a single value
  keyenv get DATABASE_URL

  # Get value with metadata in JSON format
  keyenv get API_KEY --json

  # Use in scripts
  export DB_URL=$(keyenv get DATABASE_URL)`,
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

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			secret, err := client.GetSecret(context.Background(), projectID, envName, key)
			if err != nil {
				return kerrors.WrapAPIError("get", err)
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(secret); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
				return nil
			}

			// Raw value output (default)
			fmt.Print(secret.Value)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full secret record as JSON")

	return cmd
}
