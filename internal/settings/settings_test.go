package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DailyGoal != 32 || cfg.QuickSmall != "2" || cfg.QuickLarge != "6" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.BirthDate.IsZero() {
		t.Fatalf("birth date should start unset")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewStore(path)

	want := Defaults()
	want.BabyName = "Willow"
	want.BirthDate = time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	want.DailyGoal = 28

	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.BabyName != want.BabyName || got.DailyGoal != want.DailyGoal || !got.BirthDate.Equal(want.BirthDate) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "settings.json"))
	if err := s.Save(Defaults()); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".settings-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestPartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"babyName":"Ada"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BabyName != "Ada" || cfg.DailyGoal != 32 {
		t.Fatalf("partial document should overlay defaults: %+v", cfg)
	}
}

func TestUpdate(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	got, err := s.Update(func(c *Settings) { c.DailyGoal = 40 })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DailyGoal != 40 {
		t.Fatalf("update not applied: %+v", got)
	}
	reloaded, _ := s.Load()
	if reloaded.DailyGoal != 40 {
		t.Fatalf("update not persisted: %+v", reloaded)
	}
}
