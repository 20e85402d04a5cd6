package commands

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyenv/keyenv-go/pkg/keyenv"
)

const listResponse = `{"secrets": [
	{"id": "s1", "key": "DATABASE_URL", "version": 3, "type": "static", "updated_at": "2026-08-20T10:00:00Z"},
	{"id": "s2", "key": "API_KEY", "version": 1, "type": "static"}
]}`

func TestListCommand_Table(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/projects/p1/environments/development/secrets", r.URL.Path)
		_, _ = w.Write([]byte(listResponse))
	})

	cmd := NewListCommand(cfg)
	output := captureStdout(t, cmd, []string{})

	assert.Contains(t, output, "KEY")
	assert.Contains(t, output, "VERSION")
	assert.Contains(t, output, "DATABASE_URL")
	assert.Contains(t, output, "API_KEY")
	assert.Contains(t, output, "2026-08-20T10:00:00Z")

	// Missing updated_at renders as a placeholder
	assert.Contains(t, output, "-")
}

func TestListCommand_JSON(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listResponse))
	})

	cmd := NewListCommand(cfg)
	output := captureStdout(t, cmd, []string{"--json"})

	var secrets []keyenv.Secret
	require.NoError(t, json.Unmarshal([]byte(output), &secrets))
	require.Len(t, secrets, 2)
	assert.Equal(t, "DATABASE_URL", secrets[0].Key)
	assert.Equal(t, 3, secrets[0].Version)
}

func TestListCommand_Empty(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"secrets": []}`))
	})

	cmd := NewListCommand(cfg)
	output := captureStdout(t, cmd, []string{})

	assert.Contains(t, output, "No secrets in development")
}

func TestHistoryCommand_Table(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/projects/p1/environments/development/secrets/API_KEY/history", r.URL.Path)
		_, _ = w.Write([]byte(`{"history": [
			{"version": 2, "change_type": "updated", "changed_by": "alice@example.com", "created_at": "2026-08-21T09:00:00Z"},
			{"version": 1, "change_type": "created", "created_at": "2026-08-20T09:00:00Z"}
		]}`))
	})

	cmd := NewHistoryCommand(cfg)
	output := captureStdout(t, cmd, []string{"API_KEY"})

	assert.Contains(t, output, "VERSION")
	assert.Contains(t, output, "updated")
	assert.Contains(t, output, "alice@example.com")
	assert.Contains(t, output, "created")
}

func TestHistoryCommand_JSON(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"history": [{"version": 1, "change_type": "created", "created_at": "2026-08-20T09:00:00Z"}]}`))
	})

	cmd := NewHistoryCommand(cfg)
	output := captureStdout(t, cmd, []string{"API_KEY", "--json"})

	var entries []keyenv.SecretHistory
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "created", entries[0].ChangeType)
}
