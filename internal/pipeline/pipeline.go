// Package pipeline sequences transcription, Hinglish normalization, and
// video prompt generation for one audio input, and defines the overall
// success/failure contract exposed to the front ends.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"reelscribe/internal/transcription"
	"reelscribe/internal/videoprompt"
	"reelscribe/pkg/logger"
)

// Stage identifies a pipeline state for progress reporting
type Stage string

const (
	StageTranscribing Stage = "transcribing"
	StageNormalizing  Stage = "normalizing"
	StageSegmenting   Stage = "segmenting"
	StageDone         Stage = "done"
)

// ProgressFunc observes state transitions. Advisory only: it never affects
// control flow and may be nil.
type ProgressFunc func(stage Stage, message string)

// Options control a single pipeline invocation
type Options struct {
	EnableNormalization bool
	GeneratePrompts     bool
	PromptStyle         videoprompt.Style
	Cameos              []string
	LanguageHint        string
}

// StageError is a recoverable failure captured into the result
type StageError struct {
	Stage Stage  `json:"stage"`
	Error string `json:"error"`
}

// Result is the aggregate output of one invocation. RawTranscript is always
// set on success; CleanedTranscript equals RawTranscript when normalization
// was disabled or failed; VideoPrompts is nil when prompt generation was not
// requested or failed.
type Result struct {
	RawTranscript     string
	CleanedTranscript string
	Language          string
	DurationSeconds   float64
	VideoPrompts      *videoprompt.Document
	Errors            []StageError
}

// Transcriber is the speech-to-text collaborator
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (*transcription.Result, error)
}

// Normalizer is the transcript cleanup collaborator
type Normalizer interface {
	Normalize(ctx context.Context, rawText string, enable bool) (string, error)
}

// Segmenter is the video prompt generation collaborator
type Segmenter interface {
	Segment(ctx context.Context, cleanedText string, style videoprompt.Style, cameos []string) (*videoprompt.Document, error)
}

// Pipeline runs the three stages in order. A single invocation is
// sequential; concurrent invocations are independent and share no state.
type Pipeline struct {
	transcriber Transcriber
	normalizer  Normalizer
	segmenter   Segmenter
}

// New creates a pipeline over the given collaborators
func New(t Transcriber, n Normalizer, s Segmenter) *Pipeline {
	return &Pipeline{transcriber: t, normalizer: n, segmenter: s}
}

// Run executes the pipeline for one audio file. Transcription failure is
// fatal; normalization failure degrades to the raw transcript; segmentation
// failure keeps the transcript and records the error. Cancellation surfaces
// as the context's error with no partial result.
func (p *Pipeline) Run(ctx context.Context, audioPath string, opts Options, progress ProgressFunc) (*Result, error) {
	// Fail invalid options before the first network call
	if _, err := videoprompt.NormalizeCameos(opts.Cameos); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	report(progress, StageTranscribing, "Transcribing audio with Whisper...")
	raw, err := p.transcriber.Transcribe(ctx, audioPath, opts.LanguageHint)
	if err != nil {
		if isCancelled(err) {
			return nil, err
		}
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result := &Result{
		RawTranscript:     raw.Text,
		CleanedTranscript: raw.Text,
		Language:          raw.Language,
		DurationSeconds:   raw.Duration,
	}

	report(progress, StageNormalizing, "Cleaning transcript with LLM...")
	cleaned, err := p.normalizer.Normalize(ctx, raw.Text, opts.EnableNormalization)
	if err != nil {
		if isCancelled(err) {
			return nil, err
		}
		// Degrade: the raw transcript is still usable output
		logger.Warn("Normalization failed, using raw transcript", "error", err)
		result.Errors = append(result.Errors, StageError{Stage: StageNormalizing, Error: err.Error()})
	} else {
		result.CleanedTranscript = cleaned
	}

	if opts.GeneratePrompts {
		report(progress, StageSegmenting, "Generating video prompt segments...")
		doc, err := p.segmenter.Segment(ctx, result.CleanedTranscript, opts.PromptStyle, opts.Cameos)
		if err != nil {
			if isCancelled(err) {
				return nil, err
			}
			// The transcript already obtained is returned regardless
			logger.Warn("Segmentation failed, returning transcript without prompts", "error", err)
			result.Errors = append(result.Errors, StageError{Stage: StageSegmenting, Error: err.Error()})
		} else {
			result.VideoPrompts = doc
		}
	}

	report(progress, StageDone, "Pipeline completed")
	return result, nil
}

func report(progress ProgressFunc, stage Stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
