package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "promptforge"

// PasswordEnv unlocks the encrypted file keyring on systems without a
// native secret store.
const PasswordEnv = "PROMPTFORGE_KEYRING_PASSWORD"

// providerEnv lists the environment variables consulted when a provider
// has no stored key.
var providerEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

var ErrNoAPIKey = errors.New("API key is not configured")

type KeyringService struct {
	ring keyring.Keyring
}

func NewKeyringService(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

// OpenKeyring opens the platform keyring, falling back to an encrypted
// file under the user config dir.
func OpenKeyring() (keyring.Keyring, error) {
	dir := ""
	if configDir, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(configDir, serviceName, "keys")
	}
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt(os.Getenv(PasswordEnv)),
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errors.New("provider is required")
	}
	return s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by promptforge",
	})
}

// GetApiKey returns the stored key for provider, then the provider's
// environment variable. ErrNoAPIKey means neither is set.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return "", errors.New("provider is required")
	}
	item, err := s.ring.Get(provider)
	switch {
	case err == nil && len(item.Data) > 0:
		return string(item.Data), nil
	case err != nil && !errors.Is(err, keyring.ErrKeyNotFound):
		return "", fmt.Errorf("read %s key: %w", provider, err)
	}
	for _, name := range providerEnv[provider] {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s: %w", provider, ErrNoAPIKey)
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errors.New("provider is required")
	}
	if err := s.ring.Remove(provider); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", provider, ErrNoAPIKey)
		}
		return err
	}
	return nil
}

// ListApiKeys returns the providers with a stored key, sorted.
func (s *KeyringService) ListApiKeys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
