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

func NewHistoryCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "history <key>",
		Short: "Show the change history of a secret",
		Long: `Show who changed a secret, when, and how. History entries never include
the secret values themselves.

Examples:
  keyenv history DATABASE_URL
  keyenv history API_KEY --json`,
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

			history, err := client.GetSecretHistory(context.Background(), projectID, envName, key)
			if err != nil {
				return kerrors.WrapAPIError("history", err)
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(history)
			}

			if len(history) == 0 {
				fmt.Printf("No history for %s\n", key)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tCHANGE\tBY\tAT")
			for _, entry := range history {
				changedBy := "-"
				if entry.ChangedBy != nil {
					changedBy = *entry.ChangedBy
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", entry.Version, entry.ChangeType, changedBy, entry.CreatedAt)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
