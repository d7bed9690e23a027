package floorplan

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirSaver writes artifacts into a directory, replacing a file of the same
// name.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, content []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
