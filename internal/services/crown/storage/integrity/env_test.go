package integrity

import "testing"

func setKeyEnv(t *testing.T, key, keys, keyID string) {
	t.Helper()
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEY", key)
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEYS", keys)
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEY_ID", keyID)
}

func TestKeyringFromEnvRequiresKey(t *testing.T) {
	setKeyEnv(t, "", "", "")
	if _, err := KeyringFromEnv(); err == nil {
		t.Fatal("expected error when no key is configured")
	}
}

func TestKeyringFromEnvSingleKey(t *testing.T) {
	setKeyEnv(t, "secret", "", "")
	ring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if ring.ActiveKeyID() != "v1" {
		t.Fatalf("expected default key id v1, got %s", ring.ActiveKeyID())
	}
}

func TestKeyringFromEnvWhitespaceFallsBack(t *testing.T) {
	setKeyEnv(t, "secret", "   ", "   ")
	ring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if ring.ActiveKeyID() != "v1" {
		t.Fatalf("expected default key id v1, got %s", ring.ActiveKeyID())
	}
}

func TestKeyringFromEnvKeySpec(t *testing.T) {
	setKeyEnv(t, "", "k1=one, ,k2=two", "k2")
	ring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if ring.ActiveKeyID() != "k2" {
		t.Fatalf("expected active key id k2, got %s", ring.ActiveKeyID())
	}
}

func TestKeyringFromEnvInvalidKeySpec(t *testing.T) {
	for _, spec := range []string{"bad-entry", "k1=one,k2=", "=one"} {
		setKeyEnv(t, "", spec, "k1")
		if _, err := KeyringFromEnv(); err == nil {
			t.Fatalf("expected error for key spec %q", spec)
		}
	}
}
