// Package keyenv is the Go client for the KeyEnv secrets management API.
//
// KeyEnv stores secrets under a project/environment hierarchy. The client
// authenticates every request with a service token and exposes typed
// operations for reading, writing, and deleting secrets, plus helpers for
// injecting secrets into the process environment and rendering .env files.
//
// # Usage
//
// Create a client from a Config and call operations on it:
//
//	client, err := keyenv.New(keyenv.Config{
//	    Token: os.Getenv("KEYENV_TOKEN"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	secrets, err := client.GetSecrets(ctx, "my-project", "production")
//	if err != nil {
//	    return err
//	}
//
// The base URL defaults to the hosted KeyEnv API and can be overridden with
// Config.BaseURL or the KEYENV_API_URL environment variable (for self-hosted
// deployments).
//
// # Error Handling
//
// Every failed API call returns a *APIError, whether the failure was a
// transport problem, a timeout, or an application-level error from the
// server. Callers branch on the classification helpers instead of matching
// message strings:
//
//	secret, err := client.GetSecret(ctx, project, env, "DATABASE_URL")
//	if keyenv.IsNotFound(err) {
//	    // secret does not exist in this environment
//	}
//
// Construction is the one exception: New returns ErrMissingToken before any
// request is attempted when the config has no token.
//
// # Security
//
// Secret values are returned as plain strings and are never logged by the
// client. Callers that print or persist SecretWithValue records are
// responsible for masking the Value field.
//
// # Concurrency
//
// A Client is safe for use from multiple goroutines. Each operation performs
// one synchronous round trip (SetSecret performs up to two, sequentially);
// there is no background work, connection management beyond the standard
// http.Client, caching, or retrying.
package keyenv
