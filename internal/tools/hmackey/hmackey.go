// Package hmackey generates journal signing keys in the environment format
// read by the crown keyring.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/hippycrown/internal/platform/config"
)

// minBytes keeps generated keys at HMAC-SHA256 block strength or above.
const minBytes = 16

// Config holds configuration for HMAC key generation.
type Config struct {
	Bytes int
	// KeyID, when set, emits a rotation entry for EVENT_HMAC_KEYS instead of
	// a single EVENT_HMAC_KEY.
	KeyID string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.StringVar(&cfg.KeyID, "key-id", "", "key id for a rotation entry")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes the environment lines to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes < minBytes {
		return fmt.Errorf("bytes must be at least %d", minBytes)
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if strings.ContainsAny(keyID, "=,") {
		return errors.New("key id cannot contain '=' or ','")
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	key := hex.EncodeToString(buf)
	if keyID == "" {
		_, err := fmt.Fprintf(out, "%sEVENT_HMAC_KEY=%s\n", config.EnvPrefix, key)
		return err
	}
	_, err := fmt.Fprintf(out, "%sEVENT_HMAC_KEYS=%s=%s\n%sEVENT_HMAC_KEY_ID=%s\n",
		config.EnvPrefix, keyID, key, config.EnvPrefix, keyID)
	return err
}
