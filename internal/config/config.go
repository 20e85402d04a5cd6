package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	kerrors "github.com/keyenv/keyenv-go/internal/errors"
	"github.com/keyenv/keyenv-go/internal/logging"
)

// DefaultPath is the configuration file looked up in the working directory
// when no --config flag is given.
const DefaultPath = ".keyenv.yaml"

// fileSchema validates the configuration shape before it is trusted.
// Unknown keys are rejected so a typo like "enviroment" fails loudly
// instead of silently resolving against the wrong environment.
const fileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "project": {
      "type": "string",
      "minLength": 1
    },
    "environment": {
      "type": "string",
      "minLength": 1
    },
    "api_url": {
      "type": "string",
      "pattern": "^https?://"
    },
    "timeout": {
      "type": "integer",
      "minimum": 1,
      "maximum": 600
    }
  }
}`

// Config holds the runtime configuration
type Config struct {
	Path   string
	Logger *logging.Logger
	File   *File

	// Token is the service token from the --token flag. It is runtime-only
	// state: tokens are never read from or written to .keyenv.yaml.
	Token string
}

// File represents the .keyenv.yaml structure. The service token is never
// part of the file; it comes from KEYENV_TOKEN or the --token flag only.
type File struct {
	Project     string `yaml:"project,omitempty" json:"project,omitempty"`
	Environment string `yaml:"environment,omitempty" json:"environment,omitempty"`
	APIURL      string `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	Timeout     int    `yaml:"timeout,omitempty" json:"timeout,omitempty"` // seconds
}

// Load reads and parses the configuration file at c.Path
func (c *Config) Load() error {
	path := c.Path
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return kerrors.ConfigError{
				Field:      "path",
				Value:      path,
				Message:    "configuration file not found",
				Suggestion: "Create a .keyenv.yaml with 'project' and 'environment' keys, or pass --project and --environment",
			}
		}
		return kerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	return c.parse(data)
}

// LoadIfPresent loads the default configuration file when it exists. A
// missing file is not an error; commands that need project or environment
// report that through Project and Environment instead.
func (c *Config) LoadIfPresent() (bool, error) {
	path := c.Path
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// An explicit --config pointing at a missing file is still an error
		if c.Path != "" {
			return false, c.Load()
		}
		c.File = &File{}
		return false, nil
	}

	if err := c.Load(); err != nil {
		return true, err
	}
	return true, nil
}

// parse unmarshals and schema-validates the raw file contents
func (c *Config) parse(data []byte) error {
	// Validate against the raw document rather than the decoded struct so
	// unknown keys are still visible to the schema.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return kerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if err := validateSchema(raw); err != nil {
		return err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return kerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	c.File = &file
	return nil
}

// validateSchema checks the document against fileSchema
func validateSchema(raw map[string]interface{}) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(fileSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return kerrors.ConfigError{
			Message:    "invalid configuration:\n  - " + strings.Join(errorMessages, "\n  - "),
			Suggestion: "Valid keys are project, environment, api_url, and timeout",
		}
	}

	return nil
}

// Project resolves the project ID, preferring the flag override
func (c *Config) Project(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.File != nil && c.File.Project != "" {
		return c.File.Project, nil
	}
	return "", kerrors.ConfigError{
		Field:      "project",
		Message:    "no project configured",
		Suggestion: "Set 'project' in .keyenv.yaml or pass --project",
	}
}

// Environment resolves the environment name, preferring the flag override
func (c *Config) Environment(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.File != nil && c.File.Environment != "" {
		return c.File.Environment, nil
	}
	return "", kerrors.ConfigError{
		Field:      "environment",
		Message:    "no environment configured",
		Suggestion: "Set 'environment' in .keyenv.yaml or pass --environment",
	}
}
