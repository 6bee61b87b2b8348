package videoprompt

import (
	"fmt"
	"strings"
)

// MaxCameos is the most identities a single request may weave into roles
const MaxCameos = 3

// NormalizeCameos canonicalizes cameo handles: trims whitespace, strips one
// leading @, lowercases, drops empties, and deduplicates preserving order.
// More than MaxCameos distinct handles is rejected outright, never truncated.
func NormalizeCameos(handles []string) ([]string, error) {
	seen := make(map[string]bool, len(handles))
	normalized := make([]string, 0, len(handles))

	for _, h := range handles {
		h = strings.TrimSpace(h)
		h = strings.TrimPrefix(h, "@")
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		normalized = append(normalized, h)
	}

	if len(normalized) > MaxCameos {
		return nil, fmt.Errorf("at most %d cameo handles are allowed, got %d", MaxCameos, len(normalized))
	}

	return normalized, nil
}
