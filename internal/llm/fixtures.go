package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Fixture represents a recorded backend interaction for testing.
type Fixture struct {
	Name      string    `json:"name"`
	System    string    `json:"system"`
	User      string    `json:"user"`
	Output    string    `json:"output"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

func (f *Fixture) validate() error {
	if f.Name == "" {
		return fmt.Errorf("missing 'name' field")
	}
	if f.Model == "" {
		return fmt.Errorf("missing 'model' field")
	}
	if f.User == "" {
		return fmt.Errorf("missing 'user' field")
	}
	if f.Output == "" {
		return fmt.Errorf("missing 'output' field")
	}
	return nil
}

// LoadFixture loads a fixture named name from dir.
func LoadFixture(dir, name string) (*Fixture, error) {
	fixturePath := filepath.Join(dir, name+".json")

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("fixture not found: %s", fixturePath)
		}
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}

	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture %s (invalid JSON): %w", name, err)
	}

	if err := fixture.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", name, err)
	}

	return &fixture, nil
}

// SaveFixture writes fixture to dir/name.json atomically.
func SaveFixture(dir, name string, fixture *Fixture) error {
	if err := fixture.validate(); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create fixtures directory: %w", err)
	}

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	fixturePath := filepath.Join(dir, name+".json")
	tempPath := fixturePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write temp fixture %s: %w", name, err)
	}

	if err := os.Rename(tempPath, fixturePath); err != nil {
		_ = os.Remove(tempPath) // Best effort cleanup, ignore error
		return fmt.Errorf("rename fixture %s: %w", name, err)
	}

	return nil
}
