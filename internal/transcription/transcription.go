// Package transcription wraps the Groq Whisper API behind a small adapter.
// The adapter performs exactly one network call per invocation; retry and
// degradation policy lives with the caller.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"reelscribe/pkg/logger"
)

// ErrorReason classifies a transcription failure
type ErrorReason int

const (
	ReasonUnknown ErrorReason = iota
	ReasonUnauthorized
	ReasonRateLimited
	ReasonBadAudio
)

func (r ErrorReason) String() string {
	switch r {
	case ReasonUnauthorized:
		return "unauthorized"
	case ReasonRateLimited:
		return "rate_limited"
	case ReasonBadAudio:
		return "bad_audio"
	default:
		return "unknown"
	}
}

// Error is a failed transcription call with a classified reason
type Error struct {
	Reason ErrorReason
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription failed (%s): %v", e.Reason, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Result holds the raw output of a transcription call
type Result struct {
	Text     string
	Language string
	Duration float64
}

// Adapter calls the Groq audio transcription endpoint
type Adapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewAdapter creates a transcription adapter. model defaults to
// whisper-large-v3 when empty.
func NewAdapter(apiKey, baseURL, model string, timeout time.Duration) *Adapter {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if model == "" {
		model = "whisper-large-v3"
	}
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Adapter{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transcribe uploads the audio file and returns the raw transcript.
// languageHint may be empty; when set it is passed through as an ISO-639-1
// code. The audio must already be in a container/codec the API accepts.
func (a *Adapter) Transcribe(ctx context.Context, audioPath, languageHint string) (*Result, error) {
	if a.apiKey == "" {
		return nil, &Error{Reason: ReasonUnauthorized, Cause: errors.New("groq API key is required but not provided")}
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, &Error{Reason: ReasonBadAudio, Cause: fmt.Errorf("failed to open audio file: %w", err)}
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("failed to create form file: %w", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("failed to copy file content: %w", err)}
	}

	_ = writer.WriteField("model", a.model)
	_ = writer.WriteField("response_format", "verbose_json")
	_ = writer.WriteField("temperature", "0.8")
	if languageHint != "" {
		_ = writer.WriteField("language", languageHint)
	}

	if err := writer.Close(); err != nil {
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("failed to close multipart writer: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	logger.Debug("Uploading audio for transcription",
		"file", filepath.Base(audioPath), "model", a.model, "bytes", body.Len())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Reason: classifyStatus(resp.StatusCode),
			Cause:  fmt.Errorf("groq API error (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}

	var parsed struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &Error{Reason: ReasonUnknown, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}

	logger.Info("Transcription completed",
		"language", parsed.Language, "duration_sec", parsed.Duration, "chars", len(parsed.Text))

	return &Result{
		Text:     parsed.Text,
		Language: parsed.Language,
		Duration: parsed.Duration,
	}, nil
}

func classifyStatus(status int) ErrorReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonUnauthorized
	case status == http.StatusTooManyRequests:
		return ReasonRateLimited
	case status == http.StatusBadRequest ||
		status == http.StatusRequestEntityTooLarge ||
		status == http.StatusUnsupportedMediaType ||
		status == http.StatusUnprocessableEntity:
		return ReasonBadAudio
	default:
		return ReasonUnknown
	}
}
