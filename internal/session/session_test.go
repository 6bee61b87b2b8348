package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCreatesUniqueFolders(t *testing.T) {
	m := NewManager(t.TempDir())

	first, err := m.Setup()
	require.NoError(t, err)
	assert.DirExists(t, first)
	assert.Equal(t, first, m.Folder())

	second, err := m.Setup()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestReelFolder(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Setup()
	require.NoError(t, err)

	folder, err := m.ReelFolder(3)
	require.NoError(t, err)
	assert.DirExists(t, folder)
	assert.Equal(t, "reel3", filepath.Base(folder))
}

func TestReelFolder_RequiresSetup(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.ReelFolder(1)
	assert.Error(t, err)
}
