// Package downloader retrieves Instagram media into a session folder. The
// pipeline only requires the extracted audio; everything else is returned
// for the caller's benefit.
package downloader

import (
	"context"
	"fmt"
)

// Media holds the paths of everything retrieved for one reel
type Media struct {
	FolderPath    string
	VideoPath     string
	AudioPath     string
	ThumbnailPath string
	CaptionPath   string
	Caption       string
	Title         string
}

// Options select what to retrieve alongside the video
type Options struct {
	Audio     bool
	Thumbnail bool
	Caption   bool
}

// Error is a failed download with a short reason code
type Error struct {
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("download failed (%s): %v", e.Reason, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Downloader is the media retrieval collaborator
type Downloader interface {
	Download(ctx context.Context, url, destDir string, opts Options) (*Media, error)
}
