// Package secrets resolves the three run-time credentials from a host
// secret store or environment fallback. Values live in process memory only
// and are never written to disk, logged, or serialized.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	llmAPIKeyName     = "LLM_API_KEY"
	emailUsernameName = "EMAIL_USERNAME"
	emailPasswordName = "EMAIL_PASSWORD"
)

// ErrSecretMissing is the fatal pre-run condition: a required secret could
// not be resolved from the store or the environment.
var ErrSecretMissing = errors.New("required secret missing")

// Secrets is the opaque credentials triple, read-only after load.
type Secrets struct {
	llmAPIKey     string
	emailUsername string
	emailPassword string
}

// LLMAPIKey returns the language-model service credential.
func (s *Secrets) LLMAPIKey() string { return s.llmAPIKey }

// EmailUsername returns the SMTP account identity.
func (s *Secrets) EmailUsername() string { return s.emailUsername }

// EmailPassword returns the SMTP credential.
func (s *Secrets) EmailPassword() string { return s.emailPassword }

// String keeps credentials out of log output and %v formatting.
func (s *Secrets) String() string { return "secrets(redacted)" }

// Load resolves all three secrets before any network activity. storeDir, if
// non-empty, points at a host-managed store with one file per secret name;
// environment variables are the fallback. A .env file, when present, seeds
// the environment first.
func Load(storeDir string) (*Secrets, error) {
	_ = godotenv.Load()

	llmKey, err := resolve(storeDir, llmAPIKeyName)
	if err != nil {
		return nil, err
	}

	emailUser, err := resolve(storeDir, emailUsernameName)
	if err != nil {
		return nil, err
	}

	emailPass, err := resolve(storeDir, emailPasswordName)
	if err != nil {
		return nil, err
	}

	return &Secrets{
		llmAPIKey:     llmKey,
		emailUsername: emailUser,
		emailPassword: emailPass,
	}, nil
}

func resolve(storeDir, name string) (string, error) {
	if storeDir != "" {
		path := filepath.Join(storeDir, strings.ToLower(name))
		if raw, err := os.ReadFile(path); err == nil {
			if v := strings.TrimSpace(string(raw)); v != "" {
				return v, nil
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("%w: %s", ErrSecretMissing, name)
}
