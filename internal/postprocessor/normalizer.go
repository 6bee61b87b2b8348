// Package postprocessor cleans raw speech-to-text output with an LLM,
// normalizing Hinglish speech into readable Roman-script text.
package postprocessor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reelscribe/internal/llm"
	"reelscribe/pkg/logger"
)

const (
	// cleanupTemperature matches the transcription call so the model keeps
	// the speaker's informal register instead of over-formalizing it
	cleanupTemperature = 0.8
	// cleanupMaxTokens stays under the primary model's per-minute token quota
	cleanupMaxTokens = 4000
)

// NormalizationError reports that every model in the chain failed. Callers
// are expected to degrade to the raw transcript rather than abort.
type NormalizationError struct {
	Attempts []llm.ModelAttempt
	Cause    error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("transcript normalization failed after %d attempts: %v", len(e.Attempts), e.Cause)
}

func (e *NormalizationError) Unwrap() error { return e.Cause }

// Normalizer cleans transcripts through the model fallback chain
type Normalizer struct {
	chain *llm.Chain
}

// NewNormalizer creates a normalizer over the given chain
func NewNormalizer(chain *llm.Chain) *Normalizer {
	return &Normalizer{chain: chain}
}

// Normalize returns the cleaned transcript. When enable is false the raw
// text is returned verbatim, including the empty string; bypass is not a
// failure. Whitespace-only model output counts as an invalid response and
// advances the chain.
func (n *Normalizer) Normalize(ctx context.Context, rawText string, enable bool) (string, error) {
	if !enable {
		logger.Debug("Normalization disabled, returning raw transcript")
		return rawText, nil
	}

	if strings.TrimSpace(rawText) == "" {
		return rawText, nil
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: SystemPromptHinglish},
		{Role: "user", Content: fmt.Sprintf(UserPromptTemplate, rawText)},
	}
	opts := llm.ChatOptions{Temperature: cleanupTemperature, MaxTokens: cleanupMaxTokens}

	accept := func(content string) error {
		if strings.TrimSpace(content) == "" {
			return errors.New("model returned empty output")
		}
		return nil
	}

	content, attempts, err := n.chain.Complete(ctx, messages, opts, accept)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &NormalizationError{Attempts: attempts, Cause: err}
	}

	cleaned := strings.TrimSpace(content)
	logger.Info("Transcript normalized",
		"model", attempts[len(attempts)-1].Model,
		"input_chars", len(rawText), "output_chars", len(cleaned))

	return cleaned, nil
}
