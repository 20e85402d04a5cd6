package commands

import (
	"errors"
	"os"
	"time"

	"github.com/keyenv/keyenv-go/internal/config"
	kerrors "github.com/keyenv/keyenv-go/internal/errors"
	"github.com/keyenv/keyenv-go/pkg/keyenv"
)

// envToken is the environment variable consulted when --token is not set.
const envToken = "KEYENV_TOKEN"

// newClient builds an API client from the loaded configuration. The token
// comes from the --token flag or KEYENV_TOKEN; it never lives in the
// configuration file.
func newClient(cfg *config.Config) (*keyenv.Client, error) {
	token := cfg.Token
	if token == "" {
		token = os.Getenv(envToken)
	}

	clientCfg := keyenv.Config{
		Token:  token,
		Logger: cfg.Logger,
	}
	if cfg.File != nil {
		clientCfg.BaseURL = cfg.File.APIURL
		clientCfg.Timeout = time.Duration(cfg.File.Timeout) * time.Second
	}

	client, err := keyenv.New(clientCfg)
	if err != nil {
		if errors.Is(err, keyenv.ErrMissingToken) {
			return nil, kerrors.UserError{
				Message:    "No service token provided",
				Suggestion: "Set the KEYENV_TOKEN environment variable or pass --token",
				Err:        err,
			}
		}
		return nil, err
	}
	return client, nil
}
