// Package settings loads and persists the user settings of a vault
// (.larder.yaml) and broadcasts changes to subscribers.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/larder/pkg/entry"
	"github.com/aretw0/larder/pkg/nutrient"
)

// FileName is the settings file looked up at the vault root.
const FileName = ".larder.yaml"

// DefaultNutrients selects nutrient notes by ID.
const DefaultNutrients = "nutrients/**"

// Display selects where the summary is rendered.
type Display string

const (
	DisplayStatus   Display = "status"
	DisplayDocument Display = "document"
)

// Settings is the user-editable configuration of a vault.
type Settings struct {
	// Tag is the hashtag that marks food-log entries, without '#'.
	Tag string `yaml:"tag" json:"tag"`
	// Nutrients is a doublestar pattern over note IDs selecting nutrient notes.
	Nutrients string `yaml:"nutrients" json:"nutrients"`
	// Goals holds daily targets keyed by field name (aliases accepted).
	Goals map[string]float64 `yaml:"goals,omitempty" json:"goals,omitempty"`
	// GoalsNote optionally names a note whose frontmatter holds goals.
	// Its values override Goals field by field.
	GoalsNote string  `yaml:"goals_note,omitempty" json:"goals_note,omitempty"`
	Display   Display `yaml:"display" json:"display"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Tag:       entry.DefaultTag,
		Nutrients: DefaultNutrients,
		Display:   DisplayStatus,
	}
}

// Load reads settings from path. A missing file yields Default; fields left
// empty in the file keep their defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return s, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	s = s.merge(file)
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

// LoadDir reads FileName from a vault root.
func LoadDir(root string) (Settings, error) {
	return Load(filepath.Join(root, FileName))
}

// Save writes s as YAML to path.
func (s Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func (s Settings) merge(file Settings) Settings {
	if file.Tag != "" {
		s.Tag = entry.NormalizeTag(file.Tag)
	}
	if file.Nutrients != "" {
		s.Nutrients = file.Nutrients
	}
	if file.Goals != nil {
		s.Goals = file.Goals
	}
	if file.GoalsNote != "" {
		s.GoalsNote = file.GoalsNote
	}
	if file.Display != "" {
		s.Display = file.Display
	}
	return s
}

// Validate checks every field.
func (s Settings) Validate() error {
	if err := entry.ValidateTag(s.Tag); err != nil {
		return fmt.Errorf("tag: %w", err)
	}
	if s.Nutrients == "" || !doublestar.ValidatePattern(s.Nutrients) {
		return fmt.Errorf("nutrients: invalid pattern %q", s.Nutrients)
	}
	for key, v := range s.Goals {
		if _, ok := nutrient.ParseField(key); !ok {
			return fmt.Errorf("goals: unknown field %q", key)
		}
		if v < 0 {
			return fmt.Errorf("goals: %s must not be negative", key)
		}
	}
	switch s.Display {
	case DisplayStatus, DisplayDocument:
	default:
		return fmt.Errorf("display: unknown mode %q", s.Display)
	}
	return nil
}

// GoalSet converts Goals to typed goals.
func (s Settings) GoalSet() nutrient.Goals {
	m := make(map[string]any, len(s.Goals))
	for k, v := range s.Goals {
		m[k] = v
	}
	return nutrient.GoalsFromMap(m)
}

// MatchesNutrient reports whether a note ID is selected as a nutrient note.
func (s Settings) MatchesNutrient(id string) bool {
	ok, err := doublestar.Match(s.Nutrients, id)
	return err == nil && ok
}

func (s Settings) clone() Settings {
	if s.Goals != nil {
		goals := make(map[string]float64, len(s.Goals))
		for k, v := range s.Goals {
			goals[k] = v
		}
		s.Goals = goals
	}
	return s
}
