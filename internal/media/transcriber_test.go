package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscribe/internal/transcription"
)

type recordingTranscriber struct {
	gotPath string
}

func (r *recordingTranscriber) Transcribe(ctx context.Context, audioPath, languageHint string) (*transcription.Result, error) {
	r.gotPath = audioPath
	return &transcription.Result{Text: "ok"}, nil
}

func TestCompressingTranscriber_SmallFilePassesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio1.mp3")
	require.NoError(t, os.WriteFile(path, []byte("small"), 0644))

	next := &recordingTranscriber{}
	ct := NewCompressingTranscriber(NewCompressor(""), next)

	result, err := ct.Transcribe(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, path, next.gotPath)
}

func TestCompressingTranscriber_CompressionFailureFallsBack(t *testing.T) {
	// Missing file makes compression fail; the original path still flows on
	next := &recordingTranscriber{}
	ct := NewCompressingTranscriber(NewCompressor(""), next)

	_, err := ct.Transcribe(context.Background(), "/nonexistent.mp3", "")
	require.NoError(t, err)
	assert.Equal(t, "/nonexistent.mp3", next.gotPath)
}
