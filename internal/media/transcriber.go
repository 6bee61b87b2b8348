package media

import (
	"context"
	"os"

	"reelscribe/internal/transcription"
	"reelscribe/pkg/logger"
)

// Transcriber is the downstream transcription surface
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (*transcription.Result, error)
}

// CompressingTranscriber compresses oversized audio before handing it to
// the wrapped transcriber, and cleans up the temporary compressed file.
type CompressingTranscriber struct {
	compressor *Compressor
	next       Transcriber
	maxBytes   int64
}

// NewCompressingTranscriber wraps next with pre-upload compression
func NewCompressingTranscriber(compressor *Compressor, next Transcriber) *CompressingTranscriber {
	return &CompressingTranscriber{
		compressor: compressor,
		next:       next,
		maxBytes:   MaxUploadBytes,
	}
}

// Transcribe prepares the audio and delegates. Compression failures fall
// back to uploading the original file rather than aborting.
func (t *CompressingTranscriber) Transcribe(ctx context.Context, audioPath, languageHint string) (*transcription.Result, error) {
	prepared, err := t.compressor.CompressIfNeeded(ctx, audioPath, t.maxBytes)
	if err != nil {
		logger.Warn("Audio compression failed, uploading original", "error", err)
		prepared = audioPath
	}
	if prepared != audioPath {
		defer os.Remove(prepared)
	}

	return t.next.Transcribe(ctx, prepared, languageHint)
}
