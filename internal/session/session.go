// Package session organizes downloads for one run into a unique folder tree.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Manager creates and tracks the session folder for a download run.
// Folder names combine a timestamp with a short uuid so that concurrent
// sessions never collide.
type Manager struct {
	baseDir       string
	sessionFolder string
}

// NewManager creates a manager rooted at baseDir
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = "downloads"
	}
	return &Manager{baseDir: baseDir}
}

// Setup creates a fresh session folder and remembers it
func (m *Manager) Setup() (string, error) {
	name := fmt.Sprintf("session_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8])
	folder := filepath.Join(m.baseDir, name)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create session folder: %w", err)
	}
	m.sessionFolder = folder
	return folder, nil
}

// Folder returns the current session folder, or empty before Setup
func (m *Manager) Folder() string {
	return m.sessionFolder
}

// ReelFolder creates (if needed) and returns the subfolder for one reel
func (m *Manager) ReelFolder(number int) (string, error) {
	if m.sessionFolder == "" {
		return "", fmt.Errorf("session folder not created")
	}
	folder := filepath.Join(m.sessionFolder, fmt.Sprintf("reel%d", number))
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create reel folder: %w", err)
	}
	return folder, nil
}
