package keyenv

import "encoding/json"

// Records deserialized from API responses. The client never mutates one
// after decoding: every update produces a fresh record built from the
// server's response, never a local patch.
//
// Timestamps are carried as opaque strings. The API emits them in RFC 3339
// form today, but the client neither parses nor compares them, so the server
// side can evolve the format without breaking callers.

// Secret is a secret's metadata, without its value.
type Secret struct {
	ID            string  `json:"id"`
	EnvironmentID string  `json:"environment_id"`
	Key           string  `json:"key"`
	Type          string  `json:"type,omitempty"`
	Version       int     `json:"version"`
	Description   *string `json:"description,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// SecretWithValue is a Secret plus its decrypted value.
//
// InheritedFrom names the environment the value was inherited from, or is
// nil when the secret is defined locally in the requested environment.
//
// Never log the Value field. Use logging.Secret or equivalent masking when
// a value must appear in diagnostic output.
type SecretWithValue struct {
	Secret
	Value         string  `json:"value"`
	InheritedFrom *string `json:"inherited_from,omitempty"`
}

// Environment is a named deployment context within a project.
//
// InheritsFrom names the parent environment whose values this one falls
// back to; the chain is a lookup relation resolved server-side, not an
// ownership relation.
type Environment struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	Name         string  `json:"name"`
	InheritsFrom *string `json:"inherits_from,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// SecretInput is the payload for creating a secret.
type SecretInput struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}

// SecretUpdate is the payload for updating an existing secret's value.
// A nil Description leaves the stored description untouched.
type SecretUpdate struct {
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}

// SecretHistory is one historical version of a secret.
type SecretHistory struct {
	ID         string  `json:"id"`
	SecretID   string  `json:"secret_id"`
	Key        string  `json:"key"`
	Version    int     `json:"version"`
	ChangedBy  *string `json:"changed_by,omitempty"`
	ChangeType string  `json:"change_type"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// unwrapSecret normalizes the two response shapes the single-secret
// endpoint produces: `{"secret": {...}}` or the secret fields at the
// response root. All call sites go through here so the ambiguity stays in
// one place.
func unwrapSecret(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Secret json.RawMessage `json:"secret"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Secret) > 0 && string(envelope.Secret) != "null" {
		return envelope.Secret
	}
	return raw
}
