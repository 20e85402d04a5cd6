package keyenv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/keyenv/keyenv-go/internal/logging"
)

// Doer performs a single HTTP round trip. *http.Client satisfies it; tests
// substitute fakes that never touch the network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the options for constructing a Client.
type Config struct {
	// Token is the service token used for bearer authentication (required).
	Token string

	// BaseURL overrides the API endpoint. When empty, the KEYENV_API_URL
	// environment variable is consulted, then DefaultBaseURL. Trailing
	// slashes are stripped at construction time.
	BaseURL string

	// Timeout bounds each round trip made by the default HTTP client
	// (DefaultTimeout when zero). Ignored when HTTPClient is set; a custom
	// transport manages its own deadlines.
	Timeout time.Duration

	// HTTPClient performs the round trips. Defaults to an *http.Client
	// with Timeout applied.
	HTTPClient Doer

	// Setenv receives each key/value pair during LoadEnv. Defaults to
	// os.Setenv; tests swap in an in-memory recorder.
	Setenv func(key, value string) error

	// Logger receives debug output (request method, path, status, body
	// size — never secret values). Defaults to a quiet logger.
	Logger *logging.Logger
}

// Client is a KeyEnv API client. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	http      Doer
	baseURL   string
	token     string
	setenv    func(key, value string) error
	logger    *logging.Logger
	userAgent string
}

// New builds a Client from cfg. It fails with ErrMissingToken before any
// request is attempted when cfg.Token is empty.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv(envBaseURL)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	setenv := cfg.Setenv
	if setenv == nil {
		setenv = os.Setenv
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(false, true)
	}

	return &Client{
		http:      httpClient,
		baseURL:   baseURL,
		token:     cfg.Token,
		setenv:    setenv,
		logger:    logger,
		userAgent: fmt.Sprintf("keyenv-go/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH),
	}, nil
}

// secretsPath builds the collection path for an environment's secrets.
func secretsPath(projectID, environment string) string {
	return fmt.Sprintf("/projects/%s/environments/%s/secrets",
		url.PathEscape(projectID), url.PathEscape(environment))
}

// GetSecrets retrieves every secret in an environment with its decrypted
// value, including values inherited from parent environments.
func (c *Client) GetSecrets(ctx context.Context, projectID, environment string) ([]SecretWithValue, error) {
	raw, err := c.execute(ctx, "get_secrets", http.MethodGet, secretsPath(projectID, environment)+"/export", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Secrets []SecretWithValue `json:"secrets"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("keyenv get_secrets: failed to decode response: %w", err)
	}
	return resp.Secrets, nil
}

// GetSecretsMap returns the environment's secrets as a key → value map.
// When the export contains duplicate keys the last occurrence wins.
func (c *Client) GetSecretsMap(ctx context.Context, projectID, environment string) (map[string]string, error) {
	secrets, err := c.GetSecrets(ctx, projectID, environment)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(secrets))
	for _, s := range secrets {
		values[s.Key] = s.Value
	}
	return values, nil
}

// GetSecret retrieves a single secret with its decrypted value.
func (c *Client) GetSecret(ctx context.Context, projectID, environment, key string) (*SecretWithValue, error) {
	raw, err := c.execute(ctx, "get_secret", http.MethodGet, secretsPath(projectID, environment)+"/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, err
	}

	var secret SecretWithValue
	if err := json.Unmarshal(unwrapSecret(raw), &secret); err != nil {
		return nil, fmt.Errorf("keyenv get_secret: failed to decode response: %w", err)
	}
	return &secret, nil
}

// ListSecrets retrieves the environment's secret metadata without values.
func (c *Client) ListSecrets(ctx context.Context, projectID, environment string) ([]Secret, error) {
	raw, err := c.execute(ctx, "list_secrets", http.MethodGet, secretsPath(projectID, environment), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Secrets []Secret `json:"secrets"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("keyenv list_secrets: failed to decode response: %w", err)
	}
	return resp.Secrets, nil
}

// CreateSecret creates a new secret in the environment. The server rejects
// a key that already exists there; use SetSecret for upsert semantics.
func (c *Client) CreateSecret(ctx context.Context, projectID, environment string, input SecretInput) (*Secret, error) {
	raw, err := c.execute(ctx, "create_secret", http.MethodPost, secretsPath(projectID, environment), input)
	if err != nil {
		return nil, err
	}

	var secret Secret
	if err := json.Unmarshal(unwrapSecret(raw), &secret); err != nil {
		return nil, fmt.Errorf("keyenv create_secret: failed to decode response: %w", err)
	}
	return &secret, nil
}

// UpdateSecret replaces an existing secret's value. The server answers 404
// when the key does not exist in the environment.
func (c *Client) UpdateSecret(ctx context.Context, projectID, environment, key string, update SecretUpdate) (*Secret, error) {
	raw, err := c.execute(ctx, "update_secret", http.MethodPut, secretsPath(projectID, environment)+"/"+url.PathEscape(key), update)
	if err != nil {
		return nil, err
	}

	var secret Secret
	if err := json.Unmarshal(unwrapSecret(raw), &secret); err != nil {
		return nil, fmt.Errorf("keyenv update_secret: failed to decode response: %w", err)
	}
	return &secret, nil
}

// SetSecret creates or updates a secret. It tries the update first and
// falls back to create only when the update reports not-found, so the
// common case (key exists) costs one round trip and there is no
// check-then-create race. Any other failure propagates unchanged.
func (c *Client) SetSecret(ctx context.Context, projectID, environment string, input SecretInput) (*Secret, error) {
	updated, err := c.UpdateSecret(ctx, projectID, environment, input.Key, SecretUpdate{
		Value:       input.Value,
		Description: input.Description,
	})
	if err == nil {
		return updated, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	return c.CreateSecret(ctx, projectID, environment, input)
}

// DeleteSecret removes a secret from the environment.
func (c *Client) DeleteSecret(ctx context.Context, projectID, environment, key string) error {
	_, err := c.execute(ctx, "delete_secret", http.MethodDelete, secretsPath(projectID, environment)+"/"+url.PathEscape(key), nil)
	return err
}

// GetSecretHistory retrieves the recorded versions of a secret, newest
// first.
func (c *Client) GetSecretHistory(ctx context.Context, projectID, environment, key string) ([]SecretHistory, error) {
	raw, err := c.execute(ctx, "get_secret_history", http.MethodGet, secretsPath(projectID, environment)+"/"+url.PathEscape(key)+"/history", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		History []SecretHistory `json:"history"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("keyenv get_secret_history: failed to decode response: %w", err)
	}
	return resp.History, nil
}

// ListEnvironments retrieves the environments of a project.
func (c *Client) ListEnvironments(ctx context.Context, projectID string) ([]Environment, error) {
	raw, err := c.execute(ctx, "list_environments", http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/environments", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Environments []Environment `json:"environments"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("keyenv list_environments: failed to decode response: %w", err)
	}
	return resp.Environments, nil
}

// ListProjects retrieves the projects visible to the token. The project
// schema varies by account type, so entries are returned undecoded.
func (c *Client) ListProjects(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.execute(ctx, "list_projects", http.MethodGet, "/projects", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Projects []map[string]any `json:"projects"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("keyenv list_projects: failed to decode response: %w", err)
	}
	return resp.Projects, nil
}

// GetCurrentUser returns the identity behind the token, undecoded. The
// response shape differs between user tokens and service tokens.
func (c *Client) GetCurrentUser(ctx context.Context) (map[string]any, error) {
	raw, err := c.execute(ctx, "get_current_user", http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user map[string]any
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("keyenv get_current_user: failed to decode response: %w", err)
	}
	return user, nil
}

// ValidateToken checks that the configured token is accepted by the API.
// A nil return means the token authenticated successfully.
func (c *Client) ValidateToken(ctx context.Context) error {
	_, err := c.GetCurrentUser(ctx)
	return err
}

// LoadEnv fetches the environment's secrets and writes each one into the
// process environment through the configured Setenv, so both in-process
// lookups and spawned children observe them. It returns the number of
// secrets written.
//
// The process environment is ambient shared state; concurrent LoadEnv
// calls racing on the same keys are not serialized here.
func (c *Client) LoadEnv(ctx context.Context, projectID, environment string) (int, error) {
	secrets, err := c.GetSecrets(ctx, projectID, environment)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, s := range secrets {
		if err := c.setenv(s.Key, s.Value); err != nil {
			return loaded, fmt.Errorf("keyenv load_env: setting %s: %w", s.Key, err)
		}
		loaded++
	}
	return loaded, nil
}

// GenerateEnvFile fetches the environment's secrets and renders them as
// .env-formatted text. The caller persists the result; the client performs
// no file I/O.
func (c *Client) GenerateEnvFile(ctx context.Context, projectID, environment string) (string, error) {
	secrets, err := c.GetSecrets(ctx, projectID, environment)
	if err != nil {
		return "", err
	}

	pairs := make([]EnvPair, len(secrets))
	for i, s := range secrets {
		pairs[i] = EnvPair{Key: s.Key, Value: s.Value}
	}
	return RenderEnvFile(environment, pairs), nil
}
