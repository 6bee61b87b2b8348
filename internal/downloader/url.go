package downloader

import (
	"net/url"
	"strings"
)

// IsValidInstagramURL reports whether url points at an Instagram reel or
// post: instagram.com host, a /reel/ or /p/ path, and a non-empty ID after
// the pattern.
func IsValidInstagramURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Host != "instagram.com" && parsed.Host != "www.instagram.com" {
		return false
	}

	path := parsed.Path
	for _, pattern := range []string{"/reel/", "/p/"} {
		if idx := strings.Index(path, pattern); idx >= 0 {
			rest := path[idx+len(pattern):]
			if id := strings.SplitN(rest, "/", 2)[0]; id != "" {
				return true
			}
			return false
		}
	}

	return false
}
