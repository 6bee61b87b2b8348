// Package media prepares audio files for upload, compressing anything over
// the transcription API's size limit.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"reelscribe/pkg/logger"
)

const (
	// MaxUploadBytes is the Groq API file size limit with a small margin
	MaxUploadBytes = int64(24.5 * 1024 * 1024)
	// MinBitrateKbps keeps speech intelligible after compression
	MinBitrateKbps = 32
	// MaxBitrateKbps caps the target; anything higher defeats the purpose
	MaxBitrateKbps = 128
)

// Compressor shrinks oversized audio via ffmpeg bitrate reduction
type Compressor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewCompressor creates a compressor using the given ffmpeg binary.
// ffprobe is resolved next to it.
func NewCompressor(ffmpegPath string) *Compressor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := "ffprobe"
	if dir := filepath.Dir(ffmpegPath); dir != "." {
		ffprobePath = filepath.Join(dir, "ffprobe")
	}
	return &Compressor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// TargetBitrateKbps computes the audio bitrate needed to fit maxBytes into
// durationSeconds, clamped to the intelligible range.
func TargetBitrateKbps(maxBytes int64, durationSeconds float64) int {
	if durationSeconds <= 0 {
		return 64
	}
	maxSizeMB := float64(maxBytes) / (1024 * 1024)
	kbps := int(maxSizeMB * 8192 / durationSeconds)
	if kbps < MinBitrateKbps {
		return MinBitrateKbps
	}
	if kbps > MaxBitrateKbps {
		return MaxBitrateKbps
	}
	return kbps
}

// CompressIfNeeded returns a path to an audio file no larger than maxBytes.
// Files already under the limit are returned unchanged. Compressed output is
// mono MP3 written next to the input with a "compressed_" prefix; the caller
// owns its cleanup.
func (c *Compressor) CompressIfNeeded(ctx context.Context, audioPath string, maxBytes int64) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat audio file: %w", err)
	}
	if info.Size() <= maxBytes {
		return audioPath, nil
	}

	duration, err := c.probeDuration(ctx, audioPath)
	if err != nil {
		logger.Warn("Failed to probe audio duration, using default bitrate", "error", err)
		duration = 0
	}

	kbps := TargetBitrateKbps(maxBytes, duration)
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outPath := filepath.Join(filepath.Dir(audioPath), "compressed_"+base+".mp3")

	logger.Info("Compressing oversized audio",
		"input_mb", float64(info.Size())/(1024*1024), "bitrate_kbps", kbps)

	cmd := exec.CommandContext(ctx, c.ffmpegPath,
		"-i", audioPath,
		"-vn",
		"-ac", "1",
		"-b:a", fmt.Sprintf("%dk", kbps),
		"-y",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg compression failed: %w: %s", err, string(out))
	}

	compressed, err := os.Stat(outPath)
	if err != nil {
		return "", fmt.Errorf("compressed file missing: %w", err)
	}
	logger.Info("Audio compressed",
		"output_mb", float64(compressed.Size())/(1024*1024))

	return outPath, nil
}

func (c *Compressor) probeDuration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}
