package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"reelscribe/pkg/logger"
)

// YtDlpAgent downloads media via the yt-dlp executable and extracts audio
// via ffmpeg.
type YtDlpAgent struct {
	ytDlpPath  string
	ffmpegPath string
	httpClient *http.Client
}

// NewYtDlpAgent creates a yt-dlp download agent
func NewYtDlpAgent(ytDlpPath, ffmpegPath string) *YtDlpAgent {
	if ytDlpPath == "" {
		ytDlpPath = "yt-dlp"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &YtDlpAgent{
		ytDlpPath:  ytDlpPath,
		ffmpegPath: ffmpegPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type reelMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// Download retrieves the reel at url into destDir. The video is always
// fetched; audio, thumbnail, and caption follow opts.
func (a *YtDlpAgent) Download(ctx context.Context, url, destDir string, opts Options) (*Media, error) {
	if !IsValidInstagramURL(url) {
		return nil, &Error{Reason: "invalid_url", Cause: fmt.Errorf("not an Instagram reel/post URL: %s", url)}
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, &Error{Reason: "filesystem", Cause: err}
	}

	media := &Media{FolderPath: destDir}

	videoPath := filepath.Join(destDir, "video1.mp4")
	logger.Info("Downloading reel", "url", url)
	cmd := exec.CommandContext(ctx, a.ytDlpPath, url, "-o", videoPath, "--quiet", "--no-warnings")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &Error{Reason: "fetch_failed", Cause: fmt.Errorf("yt-dlp failed: %w: %s", err, string(out))}
	}
	media.VideoPath = videoPath

	meta, err := a.fetchMetadata(ctx, url)
	if err != nil {
		// Metadata powers thumbnail/caption only; the video already landed
		logger.Warn("Failed to fetch reel metadata", "error", err)
		meta = &reelMetadata{}
	}
	media.Title = meta.Title

	if opts.Thumbnail && meta.Thumbnail != "" {
		if path, err := a.fetchThumbnail(ctx, meta.Thumbnail, destDir); err != nil {
			logger.Warn("Thumbnail download failed", "error", err)
		} else {
			media.ThumbnailPath = path
		}
	}

	if opts.Caption {
		caption := meta.Description
		if caption == "" {
			caption = "No caption available"
		}
		captionPath := filepath.Join(destDir, "caption1.txt")
		if err := os.WriteFile(captionPath, []byte(caption), 0644); err != nil {
			return nil, &Error{Reason: "filesystem", Cause: err}
		}
		media.Caption = caption
		media.CaptionPath = captionPath
	}

	if opts.Audio {
		audioPath := filepath.Join(destDir, "audio1.mp3")
		cmd := exec.CommandContext(ctx, a.ffmpegPath,
			"-i", videoPath,
			"-vn",
			"-acodec", "libmp3lame",
			"-q:a", "2",
			"-y",
			audioPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return nil, &Error{Reason: "audio_extract_failed", Cause: fmt.Errorf("ffmpeg failed: %w: %s", err, string(out))}
		}
		media.AudioPath = audioPath
	}

	logger.Info("Reel downloaded", "title", media.Title, "folder", destDir)
	return media, nil
}

func (a *YtDlpAgent) fetchMetadata(ctx context.Context, url string) (*reelMetadata, error) {
	cmd := exec.CommandContext(ctx, a.ytDlpPath, url, "--dump-json", "--quiet")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp --dump-json failed: %w", err)
	}
	var meta reelMetadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	return &meta, nil
}

func (a *YtDlpAgent) fetchThumbnail(ctx context.Context, thumbURL, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", thumbURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail fetch returned status %d", resp.StatusCode)
	}

	path := filepath.Join(destDir, "thumbnail1.jpg")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}
	return path, nil
}
