package crown

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"
)

func setKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEY", "test-key-material-test-key-material")
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEYS", "")
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEY_ID", "")
	t.Setenv("HIPPYCROWN_OTEL_ENDPOINT", "")
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("HIPPYCROWN_ADMIN", "")
	fs := flag.NewFlagSet("crown", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/crown.sqlite" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.EngineID != "main" {
		t.Fatalf("expected default engine id, got %q", cfg.EngineID)
	}
	if cfg.DefaultFee != 1000000000000000000 {
		t.Fatalf("expected default fee, got %d", cfg.DefaultFee)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("expected default locale, got %q", cfg.Locale)
	}
	if cfg.Script != "" || cfg.AssertLogOnly {
		t.Fatalf("expected no scenario, got %+v", cfg)
	}
}

func TestParseConfigEnvAndOverrides(t *testing.T) {
	t.Setenv("HIPPYCROWN_ADMIN", "root")
	t.Setenv("HIPPYCROWN_DEFAULT_FEE", "42")
	fs := flag.NewFlagSet("crown", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-engine", "side", "-fee", "7", "-script", "x.lua", "-assert-log-only"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Admin != "root" {
		t.Fatalf("expected admin from env, got %q", cfg.Admin)
	}
	if cfg.EngineID != "side" || cfg.DefaultFee != 7 {
		t.Fatalf("expected flag overrides, got %+v", cfg)
	}
	if cfg.Script != "x.lua" || !cfg.AssertLogOnly {
		t.Fatalf("expected scenario flags, got %+v", cfg)
	}
}

func TestParseConfigRejectsBlankEngine(t *testing.T) {
	fs := flag.NewFlagSet("crown", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-engine", " "}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunScenarioAgainstJournal(t *testing.T) {
	setKeyEnv(t)
	cfg := Config{
		DBPath:   filepath.Join(t.TempDir(), "crown.sqlite"),
		EngineID: "main",
		Admin:    "admin",
		Locale:   "en-US",
		Script:   filepath.Join("..", "..", "tools", "scenario", "testdata", "fee_change.lua"),
	}
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"engine main: 5 events, chain verified",
		"head seq 5 signed with key v1 (active key v1)",
		"holder=bob mood=false paused=false",
		"fee=20",
		"1 rejected calls recorded",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}

	// Reopening replays the journal without a script.
	cfg.Script = ""
	out.Reset()
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !strings.Contains(out.String(), "holder=bob") {
		t.Fatalf("expected restored holder:\n%s", out.String())
	}
}

func TestRunLocalizedSummary(t *testing.T) {
	setKeyEnv(t)
	cfg := Config{
		DBPath:     filepath.Join(t.TempDir(), "crown.sqlite"),
		EngineID:   "main",
		Admin:      "admin",
		DefaultFee: 5,
		Locale:     "pt-BR",
	}
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "a coroa está vaga") {
		t.Fatalf("expected pt-BR vacant line:\n%s", out.String())
	}
	if strings.Contains(out.String(), "cabeça seq") {
		t.Fatalf("expected no journal head for an empty journal:\n%s", out.String())
	}
}

func TestRunRecordsScenarioRejections(t *testing.T) {
	setKeyEnv(t)
	cfg := Config{
		DBPath:   filepath.Join(t.TempDir(), "crown.sqlite"),
		EngineID: "main",
		Locale:   "en-US",
		Script:   filepath.Join("..", "..", "tools", "scenario", "testdata", "guards.lua"),
	}
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "8 rejected calls recorded") {
		t.Fatalf("expected audit count:\n%s", out.String())
	}
}

func TestRunRequiresKeyring(t *testing.T) {
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEY", "")
	t.Setenv("HIPPYCROWN_EVENT_HMAC_KEYS", "")
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "crown.sqlite"), EngineID: "main", Admin: "admin"}
	if err := Run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected keyring error")
	}
}

func TestRunRequiresAdminForNewEngine(t *testing.T) {
	setKeyEnv(t)
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "crown.sqlite"), EngineID: "main"}
	if err := Run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected genesis error")
	}
}
