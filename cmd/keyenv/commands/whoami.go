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

func NewWhoamiCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the current token",
		Long: `Validate the service token and show what it authenticates as. Useful
for checking credentials before running other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			identity, err := client.GetCurrentUser(context.Background())
			if err != nil {
				return kerrors.WrapAPIError("whoami", err)
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(identity)
			}

			for _, key := range []string{"name", "email", "project_id", "token_id"} {
				if value, ok := identity[key].(string); ok && value != "" {
					fmt.Printf("%s: %s\n", key, value)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
