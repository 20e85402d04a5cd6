package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
	"github.com/keyenv/keyenv-go/internal/execenv"
	"github.com/keyenv/keyenv-go/internal/secure"
)

func NewRunCommand(cfg *config.Config) *cobra.Command {
	var (
		project       string
		environment   string
		printVars     bool
		allowOverride bool
		workingDir    string
		timeout       int
	)

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command with secrets injected as environment variables",
		Long: `Run a command with the environment's secrets injected as environment
variables. Secrets are fetched over the API, held in protected memory, and
passed to the child process without ever touching disk.

The command must be separated from keyenv arguments with '--'.

Examples:
  keyenv run -- npm start
  keyenv run --environment production -- ./server
  keyenv run --print -- python app.py`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return kerrors.UserError{
					Message:    "No command specified",
					Suggestion: "Use: keyenv run -- <command> [args...]",
				}
			}

			// Fail on typos before any secrets are fetched
			if err := execenv.ValidateCommand(args); err != nil {
				return err
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

			ctx := context.Background()
			environmentVars, err := client.GetSecretsMap(ctx, projectID, envName)
			if err != nil {
				return kerrors.WrapAPIError("run", err)
			}

			cfg.Logger.Info("Resolved %d environment variables from %s", len(environmentVars), envName)

			// Move the values into protected memory until spawn
			secureEnv := make(map[string]*secure.SecureBuffer)
			for name, value := range environmentVars {
				buf, err := secure.NewSecureBufferFromString(value)
				if err != nil {
					for _, b := range secureEnv {
						b.Destroy()
					}
					return kerrors.UserError{
						Message:    fmt.Sprintf("Failed to secure variable %s", name),
						Details:    "This may indicate a memory protection issue",
						Suggestion: "Try running with --debug for more information",
						Err:        err,
					}
				}
				secureEnv[name] = buf
			}

			executor := execenv.New(cfg.Logger)

			// Environment doubles as the masked display copy for --print;
			// the child process env is built from the secure buffers.
			options := execenv.ExecOptions{
				Command:           args,
				Environment:       environmentVars,
				SecureEnvironment: secureEnv,
				AllowOverride:     allowOverride,
				PrintVars:         printVars,
				WorkingDir:        workingDir,
				Timeout:           timeout,
			}

			return executor.Exec(ctx, options)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")
	cmd.Flags().BoolVar(&printVars, "print", false, "Print resolved variables (values masked)")
	cmd.Flags().BoolVar(&allowOverride, "allow-override", false, "Let existing environment variables win over fetched secrets")
	cmd.Flags().StringVar(&workingDir, "working-dir", "", "Working directory for the command")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Command timeout in seconds (0 for no timeout)")

	return cmd
}
