package commands

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyenv/keyenv-go/internal/config"
	"github.com/keyenv/keyenv-go/internal/logging"
)

// newDoctorConfig writes a real config file pointed at a fake API and loads
// it the way the root command does.
func newDoctorConfig(t *testing.T, handler http.HandlerFunc, perm os.FileMode) *config.Config {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), ".keyenv.yaml")
	contents := fmt.Sprintf("project: p1\nenvironment: development\napi_url: %s\n", server.URL)
	require.NoError(t, os.WriteFile(path, []byte(contents), perm))

	cfg := &config.Config{
		Path:   path,
		Logger: logging.New(false, true),
		Token:  "test-token",
	}
	_, err := cfg.LoadIfPresent()
	require.NoError(t, err)

	return cfg
}

func doctorAPIHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/me":
			_, _ = w.Write([]byte(`{"token_id": "tok_1"}`))
		case "/api/v1/projects/p1/environments/development/secrets":
			_, _ = w.Write([]byte(`{"secrets": [{"id": "s1", "key": "A", "version": 1}, {"id": "s2", "key": "B", "version": 1}]}`))
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestDoctorCommand_AllHealthy(t *testing.T) {
	cfg := newDoctorConfig(t, doctorAPIHandler(t), 0600)

	cmd := NewDoctorCommand(cfg)
	output := captureStdout(t, cmd, []string{})

	assert.Contains(t, output, "✓")
	assert.NotContains(t, output, "✗")
	assert.Contains(t, output, "token accepted")
	assert.Contains(t, output, "2 secrets in development")
	assert.Contains(t, output, "6/6 checks passed")
}

func TestDoctorCommand_WorldReadableConfigWarns(t *testing.T) {
	cfg := newDoctorConfig(t, doctorAPIHandler(t), 0644)

	cmd := NewDoctorCommand(cfg)
	output := captureStdout(t, cmd, []string{})

	assert.Contains(t, output, "group or world accessible")
	assert.Contains(t, output, "chmod 600")

	// Warnings do not fail the run
	assert.Contains(t, output, "6/7 checks passed")
}

func TestDoctorCommand_MissingToken(t *testing.T) {
	t.Setenv(envToken, "")

	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), ".keyenv.yaml"),
		Logger: logging.New(false, true),
		File:   &config.File{},
	}

	cmd := NewDoctorCommand(cfg)
	output, err := captureStdoutErr(t, cmd, []string{})

	require.Error(t, err)
	assert.Contains(t, output, "no service token")
	assert.Contains(t, output, "KEYENV_TOKEN")
	assert.Contains(t, output, "no configuration file")
}

func TestDoctorCommand_TokenRejected(t *testing.T) {
	cfg := newDoctorConfig(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid token"}`))
	}, 0600)

	cmd := NewDoctorCommand(cfg)
	output, err := captureStdoutErr(t, cmd, []string{})

	require.Error(t, err)
	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "Invalid token")
	assert.Contains(t, output, "token was rejected")
}
