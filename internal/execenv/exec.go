package execenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	kerrors "github.com/keyenv/keyenv-go/internal/errors"
	"github.com/keyenv/keyenv-go/internal/logging"
	"github.com/keyenv/keyenv-go/internal/secure"
)

// Executor handles running commands with injected environment variables
type Executor struct {
	logger *logging.Logger
}

// New creates a new executor
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// ExecOptions configures command execution
type ExecOptions struct {
	Command           []string                        // Command and arguments to run
	Environment       map[string]string               // Plain environment variables to set
	SecureEnvironment map[string]*secure.SecureBuffer // Secret values held in protected memory until spawn
	AllowOverride     bool                            // Let existing env vars win over injected values
	PrintVars         bool                            // Print injected variable names (values masked)
	WorkingDir        string                          // Working directory for the command
	Timeout           int                             // Timeout in seconds (0 for no timeout)
}

// Exec runs a command with the provided environment variables. The child's
// exit code is preserved: the current process exits with the same code when
// the command fails.
func (e *Executor) Exec(ctx context.Context, options ExecOptions) error {
	if len(options.Command) == 0 {
		return kerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., keyenv run -- npm start)",
		}
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(options.Timeout)*time.Second)
		defer cancel()
	}

	cmdName := options.Command[0]
	if _, err := exec.LookPath(cmdName); err != nil {
		return kerrors.WrapCommandNotFound(cmdName, err)
	}

	var env []string
	var err error
	if len(options.SecureEnvironment) > 0 {
		env, err = e.buildSecureEnvironment(options.SecureEnvironment, options.AllowOverride)
	} else {
		env, err = e.buildEnvironment(options.Environment, options.AllowOverride)
	}
	if err != nil {
		return kerrors.UserError{
			Message:    "Failed to build environment",
			Details:    err.Error(),
			Suggestion: "Check your .keyenv.yaml configuration for errors",
			Err:        err,
		}
	}

	if options.PrintVars {
		// Environment doubles as the display copy when both maps are set;
		// fall back to names only when values exist solely in enclaves.
		if len(options.Environment) > 0 {
			e.printEnvironment(options.Environment)
		} else {
			e.printSecureNames(options.SecureEnvironment)
		}
	}

	cmd := exec.CommandContext(ctx, cmdName, options.Command[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("Executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("Environment variables set: %d", len(options.Environment)+len(options.SecureEnvironment))

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			// Preserve the exit code from the child process
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				os.Exit(status.ExitStatus())
			}
			os.Exit(1)
		}
		return kerrors.CommandError{
			Command:    strings.Join(options.Command, " "),
			Message:    err.Error(),
			Suggestion: "Check the command output above for details",
		}
	}

	return nil
}

// currentEnvMap parses the process environment into a map
func currentEnvMap() map[string]string {
	envMap := make(map[string]string)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}
	return envMap
}

// formatEnv converts the map back to a sorted KEY=value slice
func formatEnv(envMap map[string]string) []string {
	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}

	// Sort for consistent ordering (helps with debugging)
	sort.Strings(result)

	return result
}

// buildEnvironment creates the environment slice for the child process
func (e *Executor) buildEnvironment(vars map[string]string, allowOverride bool) ([]string, error) {
	envMap := currentEnvMap()

	for key, value := range vars {
		if allowOverride {
			// Existing environment wins
			if _, exists := envMap[key]; exists {
				continue
			}
		}
		envMap[key] = value
	}

	return formatEnv(envMap), nil
}

// buildSecureEnvironment creates the environment slice from protected
// buffers. Plaintext leaves the enclave only here, immediately before the
// child process is spawned.
func (e *Executor) buildSecureEnvironment(vars map[string]*secure.SecureBuffer, allowOverride bool) ([]string, error) {
	envMap := currentEnvMap()

	for key, buf := range vars {
		if allowOverride {
			if _, exists := envMap[key]; exists {
				continue
			}
		}

		locked, err := buf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open secure buffer for %s: %w", key, err)
		}
		envMap[key] = string(locked.Bytes())
		locked.Destroy()
	}

	return formatEnv(envMap), nil
}

// printEnvironment displays the resolved variables (values masked for security)
func (e *Executor) printEnvironment(environment map[string]string) {
	if len(environment) == 0 {
		fmt.Println("No environment variables resolved")
		return
	}

	fmt.Printf("Resolved %d environment variables:\n", len(environment))

	// Sort keys for consistent output
	keys := make([]string, 0, len(environment))
	for key := range environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("  %s=%s\n", key, maskValue(environment[key]))
	}
	fmt.Println()
}

// printSecureNames lists injected variable names without ever opening the
// protected buffers
func (e *Executor) printSecureNames(vars map[string]*secure.SecureBuffer) {
	if len(vars) == 0 {
		fmt.Println("No environment variables resolved")
		return
	}

	fmt.Printf("Resolved %d environment variables:\n", len(vars))

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("  %s=(secure)\n", key)
	}
	fmt.Println()
}

// maskValue masks a secret value for display
func maskValue(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}

	// Show first and last characters for very short values
	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}

	// Show first 2 and last 1 characters for longer values
	if len(value) <= 8 {
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}

	// For long values, show first 3 and last 2 with asterisks in between
	return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
}

// ValidateCommand checks a command before any secrets are fetched so a typo
// fails fast instead of after the API round trips
func ValidateCommand(command []string) error {
	if len(command) == 0 {
		return kerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., keyenv run -- npm start)",
		}
	}

	if _, err := exec.LookPath(command[0]); err != nil {
		return kerrors.WrapCommandNotFound(command[0], err)
	}

	return nil
}
