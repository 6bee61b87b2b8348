package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reelscribe/pkg/logger"
)

// Outcome classifies a single model attempt
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRateLimited
	OutcomeTransientError
	OutcomeInvalidResponse
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTransientError:
		return "transient_error"
	case OutcomeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ModelAttempt records the result of trying one model in the chain
type ModelAttempt struct {
	Model   string
	Outcome Outcome
	Err     error
}

// ErrChainExhausted is returned when every model in the chain failed
var ErrChainExhausted = errors.New("all models in fallback chain failed")

// ErrUnauthorized aborts the chain: switching models cannot fix a bad key
var ErrUnauthorized = errors.New("groq API key rejected")

// AcceptFunc validates a model response. A non-nil error counts as an
// invalid response and advances the chain to the next model.
type AcceptFunc func(content string) error

// Chain tries an ordered list of models until one produces an acceptable
// response. Order is strict declared priority; there is no randomization,
// no load-based selection, and no retry of an already-failed model.
type Chain struct {
	client ChatCompleter
	models []string
}

// NewChain creates a fallback chain over the given models
func NewChain(client ChatCompleter, models []string) *Chain {
	return &Chain{client: client, models: models}
}

// Models returns the configured model order
func (c *Chain) Models() []string {
	return c.models
}

// Complete runs the chain. The first model whose response passes accept wins.
// Attempts are returned for every model tried, including the successful one.
// On exhaustion the returned error wraps ErrChainExhausted and the last cause.
func (c *Chain) Complete(ctx context.Context, messages []ChatMessage, opts ChatOptions, accept AcceptFunc) (string, []ModelAttempt, error) {
	if len(c.models) == 0 {
		return "", nil, fmt.Errorf("%w: no models configured", ErrChainExhausted)
	}

	attempts := make([]ModelAttempt, 0, len(c.models))
	var lastErr error

	for _, model := range c.models {
		if err := ctx.Err(); err != nil {
			return "", attempts, err
		}

		content, err := c.client.ChatCompletion(ctx, model, messages, opts)
		if err != nil {
			// Only the caller's own cancellation stops the chain. A per-request
			// client timeout also surfaces as context.DeadlineExceeded, but the
			// caller's ctx is still live, so it falls through as transient.
			if ctx.Err() != nil {
				return "", attempts, ctx.Err()
			}
			outcome, fatal := classify(err)
			attempts = append(attempts, ModelAttempt{Model: model, Outcome: outcome, Err: err})
			if fatal {
				return "", attempts, fmt.Errorf("%w: %v", ErrUnauthorized, err)
			}
			logger.Warn("Model attempt failed, advancing chain",
				"model", model, "outcome", outcome.String(), "error", err)
			lastErr = err
			continue
		}

		if accept != nil {
			if err := accept(content); err != nil {
				attempts = append(attempts, ModelAttempt{Model: model, Outcome: OutcomeInvalidResponse, Err: err})
				logger.Warn("Model response rejected, advancing chain",
					"model", model, "error", err)
				lastErr = err
				continue
			}
		}

		attempts = append(attempts, ModelAttempt{Model: model, Outcome: OutcomeSuccess})
		logger.Debug("Model attempt succeeded", "model", model)
		return content, attempts, nil
	}

	return "", attempts, fmt.Errorf("%w: last cause: %v", ErrChainExhausted, lastErr)
}

// classify maps an error to an attempt outcome. fatal means the chain should
// stop immediately instead of advancing.
func classify(err error) (outcome Outcome, fatal bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuth():
			return OutcomeTransientError, true
		case apiErr.IsRateLimit():
			return OutcomeRateLimited, false
		default:
			// 5xx and unexpected 4xx are treated the same way: try the next model
			return OutcomeTransientError, false
		}
	}

	// Empty choices from the API surface as an invalid response
	if strings.Contains(err.Error(), "empty response") {
		return OutcomeInvalidResponse, false
	}

	// Network errors and timeouts
	return OutcomeTransientError, false
}
