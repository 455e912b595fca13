// Package settings holds the caregiver-editable preferences file.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Settings is the per-install preferences document. BirthDate zero means
// not configured; milestone ages then render "Unknown".
type Settings struct {
	BabyName   string    `json:"babyName"`
	BirthDate  time.Time `json:"birthDate,omitempty"`
	DailyGoal  float64   `json:"dailyGoalOz"`
	QuickSmall string    `json:"quickSmall"`
	QuickLarge string    `json:"quickLarge"`
	Theme      string    `json:"theme"`
}

// Defaults mirror the values answered on first run.
func Defaults() Settings {
	return Settings{
		DailyGoal:  32,
		QuickSmall: "2",
		QuickLarge: "6",
		Theme:      "system",
	}
}

// Store reads and writes the settings file. Writes are atomic: the new
// document lands in a temp file first and is renamed into place.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore uses path as the backing JSON file. The file need not exist;
// Load returns defaults until the first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, errors.Wrap(err, "read settings")
	}
	cfg := Defaults()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Settings{}, errors.Wrap(err, "parse settings")
	}
	return cfg, nil
}

func (s *Store) Save(cfg Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp settings")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write temp settings")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp settings")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace settings")
	}
	return nil
}

// Update applies fn to the current document and saves the result.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	cfg, err := s.Load()
	if err != nil {
		return Settings{}, err
	}
	fn(&cfg)
	if err := s.Save(cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}
