package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Subdirectories media is saved under
const (
	ImagesDir = "images"
	VideosDir = "videos"
)

// Manager owns the save folder: it creates subdirectories, answers
// existence checks and writes files atomically.
type Manager struct {
	root    string
	mu      sync.Mutex
	written int
	bytes   int64
}

// NewManager creates the save folder if needed and returns its manager
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save folder: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the save folder path
func (m *Manager) Root() string {
	return m.root
}

// Path joins elems onto the save folder
func (m *Manager) Path(elems ...string) string {
	return filepath.Join(append([]string{m.root}, elems...)...)
}

// EnsureDir creates a subdirectory of the save folder if missing
func (m *Manager) EnsureDir(sub string) (string, error) {
	dir := m.Path(sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", sub, err)
	}
	return dir, nil
}

// Exists reports whether a file already exists at the relative path.
// The file system is consulted on every call.
func (m *Manager) Exists(elems ...string) bool {
	_, err := os.Stat(m.Path(elems...))
	return err == nil
}

// WriteFile atomically replaces the file at rel with data
func (m *Manager) WriteFile(rel string, data []byte) error {
	return m.Save(rel, bytes.NewReader(data))
}

// Save atomically writes the contents of r to rel through a temporary
// file in the same directory.
func (m *Manager) Save(rel string, r io.Reader) error {
	filename := m.Path(rel)
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	// short temp names keep long slugs under the file name limit
	out, err := os.CreateTemp(filepath.Dir(filename), ".part-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.record(n)
	return nil
}

// Append adds data to the end of rel, creating it if needed
func (m *Manager) Append(rel string, data []byte) error {
	f, err := os.OpenFile(m.Path(rel), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", rel, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", rel, err)
	}
	m.mu.Lock()
	m.bytes += int64(len(data))
	m.mu.Unlock()
	return nil
}

func (m *Manager) record(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written++
	m.bytes += n
}

// FilesWritten returns how many files Save and WriteFile have produced
func (m *Manager) FilesWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written
}

// BytesWritten returns the total bytes written through the manager
func (m *Manager) BytesWritten() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes
}
