package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MirrorFileName is the fixed name the progress mirror is stored under.
const MirrorFileName = "shelter-training-progress.json"

// Progress is the locally persisted, non-authoritative copy of the
// volunteer's progress. It is overwritten wholesale on every update and is
// replaced by the server record whenever one is available.
type Progress struct {
	CompletedLessons []string `json:"completed_lessons"`
	TotalScore       int      `json:"total_score"`
	Badges           []string `json:"badges"`
}

// Completed reports whether a lesson id is in the mirrored completed set.
func (p *Progress) Completed(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// MirrorStore persists the progress mirror.
type MirrorStore interface {
	Load() (*Progress, error)
	Save(p *Progress) error
}

// FileStore persists the mirror as a JSON file under a directory.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed mirror store in dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, MirrorFileName)}
}

// Load reads the mirror. A missing file yields an empty progress record.
func (s *FileStore) Load() (*Progress, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Progress{CompletedLessons: []string{}, Badges: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to read progress mirror: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse progress mirror: %w", err)
	}
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	return &p, nil
}

// Save overwrites the mirror wholesale.
func (s *FileStore) Save(p *Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress mirror: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write progress mirror: %w", err)
	}
	return nil
}
