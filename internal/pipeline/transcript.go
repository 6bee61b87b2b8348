package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteTranscriptFile saves the final and raw transcripts into the reel
// folder as transcript<number>.txt and returns the file path.
func WriteTranscriptFile(folder string, number int, result *Result) (string, error) {
	path := filepath.Join(folder, fmt.Sprintf("transcript%d.txt", number))
	content := fmt.Sprintf("=== FINAL TRANSCRIPTION ===\n\n%s\n\n=== RAW WHISPER OUTPUT ===\n\n%s\n",
		result.CleanedTranscript, result.RawTranscript)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript file: %w", err)
	}
	return path, nil
}
