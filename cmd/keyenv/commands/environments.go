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

func NewEnvironmentsCommand(cfg *config.Config) *cobra.Command {
	var (
		project    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "environments",
		Short: "List the environments of a project",
		Long: `List a project's environments and their inheritance. Secrets set in a
parent environment are visible in children unless overridden there.

Examples:
  keyenv environments
  keyenv environments --project proj_123 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := cfg.Project(project)
			if err != nil {
				return err
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			environments, err := client.ListEnvironments(context.Background(), projectID)
			if err != nil {
				return kerrors.WrapAPIError("environments", err)
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(environments)
			}

			if len(environments) == 0 {
				fmt.Println("No environments found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINHERITS FROM\tCREATED")
			for _, env := range environments {
				inherits := "-"
				if env.InheritsFrom != nil {
					inherits = *env.InheritsFrom
				}
				created := env.CreatedAt
				if created == "" {
					created = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", env.Name, inherits, created)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
