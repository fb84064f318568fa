package integrity

import (
	"fmt"
	"strings"

	"github.com/louisbranch/hippycrown/internal/platform/config"
)

const defaultKeyID = "v1"

// KeySettings is the keyring configuration read from the environment.
//
// HIPPYCROWN_EVENT_HMAC_KEYS holds "id=secret" pairs separated by commas and
// wins over the single HIPPYCROWN_EVENT_HMAC_KEY.
type KeySettings struct {
	Key   string `env:"EVENT_HMAC_KEY"`
	Keys  string `env:"EVENT_HMAC_KEYS"`
	KeyID string `env:"EVENT_HMAC_KEY_ID"`
}

// KeyringFromEnv loads the HMAC keyring from HIPPYCROWN_EVENT_HMAC_* variables.
func KeyringFromEnv() (*Keyring, error) {
	var settings KeySettings
	if err := config.ParseEnv(&settings); err != nil {
		return nil, fmt.Errorf("parse keyring env: %w", err)
	}
	return settings.Keyring()
}

// Keyring builds the keyring described by s.
func (s KeySettings) Keyring() (*Keyring, error) {
	keyID := strings.TrimSpace(s.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}
	keySpec := strings.TrimSpace(s.Keys)
	if keySpec == "" {
		raw := strings.TrimSpace(s.Key)
		if raw == "" {
			return nil, fmt.Errorf("%sEVENT_HMAC_KEY is required", config.EnvPrefix)
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		value = strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid %sEVENT_HMAC_KEYS entry", config.EnvPrefix)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
