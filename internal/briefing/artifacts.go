package briefing

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifacts writes run outputs into one directory.
type Artifacts struct {
	dir string
}

func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{dir: dir}
}

// Path returns the full path for name.
func (a *Artifacts) Path(name string) string {
	return filepath.Join(a.dir, name)
}

// Write stores data under name through a temp file and rename, and returns the path.
func (a *Artifacts) Write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(a.dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	path := a.Path(name)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}
