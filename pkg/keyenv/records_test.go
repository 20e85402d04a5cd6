package keyenv_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyenv/keyenv-go/pkg/keyenv"
)

func strPtr(s string) *string {
	return &s
}

// TestSecret_RoundTrip checks the wire mapping is lossless for every
// combination of present and absent optional fields.
func TestSecret_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret keyenv.Secret
	}{
		{
			name: "all_fields",
			secret: keyenv.Secret{
				ID:            "s1",
				EnvironmentID: "e1",
				Key:           "DATABASE_URL",
				Type:          "string",
				Version:       7,
				Description:   strPtr("primary database"),
				CreatedAt:     "2026-08-01T10:00:00Z",
				UpdatedAt:     "2026-08-20T09:30:00Z",
			},
		},
		{
			name: "optionals_absent",
			secret: keyenv.Secret{
				ID:            "s2",
				EnvironmentID: "e1",
				Key:           "API_KEY",
				Version:       1,
			},
		},
		{
			name: "empty_description_still_present",
			secret: keyenv.Secret{
				ID:            "s3",
				EnvironmentID: "e2",
				Key:           "FLAG",
				Version:       2,
				Description:   strPtr(""),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.secret)
			require.NoError(t, err)

			var decoded keyenv.Secret
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.secret, decoded)
		})
	}
}

func TestSecretWithValue_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret keyenv.SecretWithValue
	}{
		{
			name: "inherited",
			secret: keyenv.SecretWithValue{
				Secret: keyenv.Secret{
					ID:            "s1",
					EnvironmentID: "e1",
					Key:           "SHARED_KEY",
					Version:       3,
				},
				Value:         "inherited-value",
				InheritedFrom: strPtr("development"),
			},
		},
		{
			name: "local_with_empty_value",
			secret: keyenv.SecretWithValue{
				Secret: keyenv.Secret{
					ID:            "s2",
					EnvironmentID: "e1",
					Key:           "EMPTY",
					Version:       1,
				},
				Value: "",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.secret)
			require.NoError(t, err)

			var decoded keyenv.SecretWithValue
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.secret, decoded)
		})
	}
}

// TestSecretWithValue_WireFieldNames pins the snake_case wire contract
// and the embedded Secret fields being flattened into the same object.
func TestSecretWithValue_WireFieldNames(t *testing.T) {
	t.Parallel()

	secret := keyenv.SecretWithValue{
		Secret: keyenv.Secret{
			ID:            "s1",
			EnvironmentID: "e1",
			Key:           "K",
			Type:          "string",
			Version:       1,
			CreatedAt:     "2026-08-01T10:00:00Z",
		},
		Value:         "v",
		InheritedFrom: strPtr("base"),
	}

	data, err := json.Marshal(secret)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	for _, field := range []string{"id", "environment_id", "key", "type", "version", "created_at", "value", "inherited_from"} {
		assert.Contains(t, wire, field)
	}
	assert.NotContains(t, wire, "secret", "embedded fields must flatten, not nest")
	assert.NotContains(t, wire, "updated_at", "absent optional must be omitted")
}

func TestEnvironment_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  keyenv.Environment
	}{
		{
			name: "with_inheritance",
			env: keyenv.Environment{
				ID:           "e2",
				ProjectID:    "p1",
				Name:         "production",
				InheritsFrom: strPtr("development"),
				CreatedAt:    "2026-07-15T08:00:00Z",
			},
		},
		{
			name: "root_environment",
			env: keyenv.Environment{
				ID:        "e1",
				ProjectID: "p1",
				Name:      "development",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.env)
			require.NoError(t, err)

			var decoded keyenv.Environment
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.env, decoded)
		})
	}
}

func TestSecretHistory_RoundTrip(t *testing.T) {
	t.Parallel()

	entry := keyenv.SecretHistory{
		ID:         "h1",
		SecretID:   "s1",
		Key:        "DATABASE_URL",
		Version:    4,
		ChangedBy:  strPtr("alice@example.com"),
		ChangeType: "updated",
		CreatedAt:  "2026-08-20T09:30:00Z",
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded keyenv.SecretHistory
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry, decoded)
}
