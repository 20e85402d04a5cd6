package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var (
		project     string
		environment string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and API connectivity",
		Long: `Verify that keyenv is ready to use.

This command checks:
- Configuration file presence and permissions
- Project and environment resolution
- Service token presence
- API authentication and reachability

Exit status is non-zero when any check fails; warnings do not fail the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cfg, project, environment)
			displayCheckResults(results)

			passed := 0
			failed := 0
			for _, result := range results {
				switch result.Status {
				case checkOK:
					passed++
				case checkError:
					failed++
				}
			}

			fmt.Printf("\nSummary: %d/%d checks passed\n", passed, len(results))
			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}

			cfg.Logger.Info("All systems operational")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to .keyenv.yaml)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment name (defaults to .keyenv.yaml)")

	return cmd
}

const (
	checkOK    = "ok"
	checkWarn  = "warn"
	checkError = "error"
)

// checkResult is the outcome of one readiness check
type checkResult struct {
	Name       string
	Status     string
	Message    string
	Suggestion string
}

func runChecks(cfg *config.Config, projectFlag, environmentFlag string) []checkResult {
	results := make([]checkResult, 0, 6)

	results = append(results, checkConfigFile(cfg)...)

	projectID, projectErr := cfg.Project(projectFlag)
	if projectErr != nil {
		results = append(results, checkResult{
			Name:       "project",
			Status:     checkWarn,
			Message:    "no project configured",
			Suggestion: "Set 'project' in .keyenv.yaml or pass --project",
		})
	} else {
		results = append(results, checkResult{
			Name:    "project",
			Status:  checkOK,
			Message: projectID,
		})
	}

	envName, envErr := cfg.Environment(environmentFlag)
	if envErr != nil {
		results = append(results, checkResult{
			Name:       "environment",
			Status:     checkWarn,
			Message:    "no environment configured",
			Suggestion: "Set 'environment' in .keyenv.yaml or pass --environment",
		})
	} else {
		results = append(results, checkResult{
			Name:    "environment",
			Status:  checkOK,
			Message: envName,
		})
	}

	// Token presence only; the value itself is never printed
	tokenSource := ""
	switch {
	case cfg.Token != "":
		tokenSource = "--token flag"
	case os.Getenv(envToken) != "":
		tokenSource = envToken
	}
	if tokenSource == "" {
		results = append(results, checkResult{
			Name:       "token",
			Status:     checkError,
			Message:    "no service token",
			Suggestion: "Set the KEYENV_TOKEN environment variable or pass --token",
		})
		return results
	}
	results = append(results, checkResult{
		Name:    "token",
		Status:  checkOK,
		Message: fmt.Sprintf("provided via %s", tokenSource),
	})

	client, err := newClient(cfg)
	if err != nil {
		results = append(results, checkResult{
			Name:    "api",
			Status:  checkError,
			Message: err.Error(),
		})
		return results
	}

	ctx := context.Background()
	if err := client.ValidateToken(ctx); err != nil {
		results = append(results, apiCheckFailure("api", "authenticate", err))
		return results
	}
	results = append(results, checkResult{
		Name:    "api",
		Status:  checkOK,
		Message: "token accepted",
	})

	if projectErr == nil && envErr == nil {
		secrets, err := client.ListSecrets(ctx, projectID, envName)
		if err != nil {
			results = append(results, apiCheckFailure("secrets", "list secrets", err))
			return results
		}
		results = append(results, checkResult{
			Name:    "secrets",
			Status:  checkOK,
			Message: fmt.Sprintf("%d secrets in %s", len(secrets), envName),
		})
	}

	return results
}

// checkConfigFile reports on the configuration file and its permissions
func checkConfigFile(cfg *config.Config) []checkResult {
	path := cfg.Path
	if path == "" {
		path = config.DefaultPath
	}

	info, err := os.Stat(path)
	if err != nil {
		return []checkResult{{
			Name:       "config",
			Status:     checkWarn,
			Message:    "no configuration file",
			Suggestion: fmt.Sprintf("Create %s or pass --project and --environment", config.DefaultPath),
		}}
	}

	results := []checkResult{{
		Name:    "config",
		Status:  checkOK,
		Message: path,
	}}

	if info.Mode().Perm()&0077 != 0 {
		results = append(results, checkResult{
			Name:       "config permissions",
			Status:     checkWarn,
			Message:    fmt.Sprintf("%s is group or world accessible (%04o)", path, info.Mode().Perm()),
			Suggestion: fmt.Sprintf("Run: chmod 600 %s", path),
		})
	}

	return results
}

// apiCheckFailure converts an API error into a check row, reusing the
// suggestion the CLI error wrapping would have produced
func apiCheckFailure(name, operation string, err error) checkResult {
	result := checkResult{
		Name:    name,
		Status:  checkError,
		Message: err.Error(),
	}

	var userErr kerrors.UserError
	if errors.As(kerrors.WrapAPIError(operation, err), &userErr) {
		result.Suggestion = userErr.Suggestion
	}
	return result
}

// displayCheckResults shows check outcomes in a formatted table
func displayCheckResults(results []checkResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case checkOK:
			status = "✓ " + status
		case checkWarn:
			status = "⚠ " + status
		case checkError:
			status = "✗ " + status
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", result.Name, status, result.Message)
	}

	_ = w.Flush()

	for _, result := range results {
		if result.Status != checkOK && result.Suggestion != "" {
			fmt.Printf("\n%s:\n  • %s\n", result.Name, result.Suggestion)
		}
	}
}
