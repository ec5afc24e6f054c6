package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mailsweep"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailsweep/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailsweep-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// ResolveStorePassword returns the store password from configuration
// when present, falling back to the system keyring under the given
// key. Used so credentials never have to live in config files.
func ResolveStorePassword(configured, key string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	pw, err := Get(key)
	if err != nil {
		return "", fmt.Errorf("store password not configured and keyring lookup failed: %w", err)
	}
	return pw, nil
}
