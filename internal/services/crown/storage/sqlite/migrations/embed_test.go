package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEventsMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(EventsFS, "events")
	if err != nil {
		t.Fatalf("read events migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one events migration")
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".sql") {
			t.Fatalf("unexpected migration file %s", entry.Name())
		}
		content, err := fs.ReadFile(EventsFS, "events/"+entry.Name())
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		if !strings.Contains(string(content), "-- +migrate Up") {
			t.Fatalf("%s is missing an up marker", entry.Name())
		}
	}
}
