package content

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

const (
	questionsFile  = "questions.json"
	partiesFile    = "parties.json"
	candidatesFile = "candidates.json"
	timelineFile   = "timeline.json"
	lessonsFile    = "lessons.json"
)

// Store loads the dataset from a data directory, falling back to the
// embedded defaults for any file that is not present there.
type Store struct {
	dataDir  string
	fallback fs.FS
}

// NewStore creates a store rooted at dataDir. An empty dataDir uses only
// the embedded dataset.
func NewStore(dataDir string) *Store {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		// embed paths are fixed at compile time
		panic(err)
	}
	return &Store{dataDir: dataDir, fallback: sub}
}

// Load reads every collection and validates the result.
func (s *Store) Load() (*Dataset, error) {
	var d Dataset

	files := []struct {
		name   string
		target any
	}{
		{questionsFile, &d.Questions},
		{partiesFile, &d.Parties},
		{candidatesFile, &d.Candidates},
		{timelineFile, &d.Timeline},
		{lessonsFile, &d.Lessons},
	}

	for _, f := range files {
		if err := s.decode(f.name, f.target); err != nil {
			return nil, err
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) decode(name string, target any) error {
	data, source, err := s.read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s (%s): %w", name, source, err)
	}
	slog.Debug("Content file loaded", "file", name, "source", source)
	return nil
}

func (s *Store) read(name string) ([]byte, string, error) {
	if s.dataDir != "" {
		path := filepath.Join(s.dataDir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !os.IsNotExist(err) {
			return nil, path, fmt.Errorf("failed to read content file: %w", err)
		}
	}

	data, err := fs.ReadFile(s.fallback, name)
	if err != nil {
		return nil, "embedded", fmt.Errorf("failed to read embedded content %s: %w", name, err)
	}
	return data, "embedded", nil
}
