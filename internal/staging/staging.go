// Package staging materializes script content as scratch files before they
// are handed to the delivery transport.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Stager writes payloads into a scratch directory. Each staged file gets a
// per-attempt uuid prefix so concurrent deliveries of the same filename
// never collide.
type Stager struct {
	dir string
}

// New returns a Stager rooted at dir, falling back to the OS temp directory
// when dir is empty.
func New(dir string) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{dir: dir}
}

// Stage writes content under a unique name and returns the full path of the
// staged file.
func (s *Stager) Stage(filename string, content []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	// filepath.Base strips any path elements smuggled in via the filename.
	name := uuid.NewString() + "-" + filepath.Base(filename)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write staged file: %w", err)
	}
	return path, nil
}

// Remove deletes a staged file. A leftover scratch file is a hygiene problem
// rather than a correctness one, so callers may treat errors as advisory.
func (s *Stager) Remove(path string) error {
	return os.Remove(path)
}
