package videoprompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reelscribe/internal/llm"
	"reelscribe/pkg/logger"
)

// Style selects the shot-direction conventions of the generated prompts
type Style string

const (
	StyleSora Style = "sora"
	StyleVeo  Style = "veo"
)

// ParseStyle maps a user-supplied style name to a Style
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StyleSora):
		return StyleSora, nil
	case string(StyleVeo):
		return StyleVeo, nil
	default:
		return "", fmt.Errorf("unknown prompt style %q (want %q or %q)", s, StyleSora, StyleVeo)
	}
}

// FailureReason classifies a segmentation failure
type FailureReason int

const (
	FailureEmptyInput FailureReason = iota
	FailureInvalidCameos
	FailureModelUnavailable
	FailureSchemaInvalid
)

func (r FailureReason) String() string {
	switch r {
	case FailureEmptyInput:
		return "empty_input"
	case FailureInvalidCameos:
		return "invalid_cameos"
	case FailureModelUnavailable:
		return "model_unavailable"
	case FailureSchemaInvalid:
		return "schema_invalid"
	default:
		return "unknown"
	}
}

// SegmentationError is a failed segmentation with a classified reason
type SegmentationError struct {
	Reason FailureReason
	Cause  error
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segmentation failed (%s): %v", e.Reason, e.Cause)
}

func (e *SegmentationError) Unwrap() error { return e.Cause }

const (
	segmentTemperature = 0.7
	segmentMaxTokens   = 4000
)

// Segmenter generates shot-list documents through the model fallback chain
type Segmenter struct {
	chain *llm.Chain
}

// NewSegmenter creates a segmenter over the given chain
func NewSegmenter(chain *llm.Chain) *Segmenter {
	return &Segmenter{chain: chain}
}

// Segment turns a cleaned transcript into a validated Document. cameos holds
// up to 3 raw identity handles; they are normalized before any network call
// and an over-long list is rejected, never truncated. A response that fails
// to parse as JSON advances the fallback chain; a parsed document that
// violates the schema fails immediately with the first violated invariant.
func (s *Segmenter) Segment(ctx context.Context, cleanedText string, style Style, cameos []string) (*Document, error) {
	if strings.TrimSpace(cleanedText) == "" {
		return nil, &SegmentationError{Reason: FailureEmptyInput, Cause: errors.New("transcript is empty")}
	}

	normalized, err := NormalizeCameos(cameos)
	if err != nil {
		return nil, &SegmentationError{Reason: FailureInvalidCameos, Cause: err}
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: buildSystemPrompt(style, normalized)},
		{Role: "user", Content: fmt.Sprintf(UserPromptSegmentTemplate, cleanedText)},
	}
	opts := llm.ChatOptions{Temperature: segmentTemperature, MaxTokens: segmentMaxTokens, JSONMode: true}

	// Parse failures advance the chain; schema violations do not.
	accept := func(content string) error {
		var doc Document
		return json.Unmarshal([]byte(extractJSON(content)), &doc)
	}

	content, attempts, err := s.chain.Complete(ctx, messages, opts, accept)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &SegmentationError{Reason: exhaustionReason(attempts), Cause: err}
	}

	var doc Document
	if err := json.Unmarshal([]byte(extractJSON(content)), &doc); err != nil {
		// accept already parsed this content; reaching here means a logic bug
		return nil, &SegmentationError{Reason: FailureSchemaInvalid, Cause: err}
	}

	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, &SegmentationError{Reason: FailureSchemaInvalid, Cause: err}
	}

	logger.Info("Video prompt document generated",
		"model", attempts[len(attempts)-1].Model,
		"segments", doc.TotalSegments,
		"duration_sec", doc.TotalDurationSeconds,
		"style", string(style))

	return &doc, nil
}

// exhaustionReason maps an exhausted chain to a failure reason: if every
// attempt produced unparseable output the schema is at fault, otherwise the
// models were unavailable.
func exhaustionReason(attempts []llm.ModelAttempt) FailureReason {
	if len(attempts) == 0 {
		return FailureModelUnavailable
	}
	for _, a := range attempts {
		if a.Outcome != llm.OutcomeInvalidResponse {
			return FailureModelUnavailable
		}
	}
	return FailureSchemaInvalid
}

// extractJSON trims markdown fences and any stray text around the outermost
// JSON object. This is the only repair applied to model output.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
