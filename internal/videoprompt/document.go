// Package videoprompt turns a cleaned transcript into a structured document
// of timed cinematic shots for AI video generators.
package videoprompt

import "fmt"

const (
	// MinSegments and MaxSegments bound the shot count of a document
	MinSegments = 2
	MaxSegments = 4
	// MinSegmentSeconds and MaxSegmentSeconds bound each shot's duration
	MinSegmentSeconds = 6
	MaxSegmentSeconds = 8
	// DefaultAspectRatio is applied when the model omits aspect_ratio
	DefaultAspectRatio = "9:16"
)

// Document is the full video prompt emitted to downstream generators.
// Field names are stable: this JSON is consumed directly by external tools.
type Document struct {
	Title                string    `json:"title"`
	TotalSegments        int       `json:"total_segments"`
	TotalDurationSeconds int       `json:"total_duration_seconds"`
	NarrativeArc         string    `json:"narrative_arc"`
	Segments             []Segment `json:"segments"`
}

// Segment is one timed shot within a document
type Segment struct {
	SegmentNumber   int         `json:"segment_number"`
	DurationSeconds int         `json:"duration_seconds"`
	Title           string      `json:"title"`
	Tone            string      `json:"tone"`
	AspectRatio     string      `json:"aspect_ratio"`
	Hook            string      `json:"hook,omitempty"`
	Location        string      `json:"location"`
	Lighting        string      `json:"lighting"`
	AmbientSounds   string      `json:"ambient_sounds"`
	Camera          Camera      `json:"camera"`
	Characters      []Character `json:"characters"`
	VisualEffects   []string    `json:"visual_effects"`
	Audio           Audio       `json:"audio"`
	EndState        string      `json:"end_state"`
}

// Camera describes the shot's camera setup
type Camera struct {
	Type     string `json:"type"`
	Style    string `json:"style"`
	Movement string `json:"movement"`
	Quality  string `json:"quality"`
}

// Character is one on-screen identity; Role may be a cameo handle or a
// generic descriptor.
type Character struct {
	Role       string `json:"role"`
	Appearance string `json:"appearance"`
	Action     string `json:"action"`
	Dialogue   string `json:"dialogue"`
	Motion     string `json:"motion"`
}

// Audio describes the segment's sound design
type Audio struct {
	MixStyle           string   `json:"mix_style"`
	BackgroundElements []string `json:"background_elements"`
}

// Validate checks the document invariants and returns an error naming the
// first violation. It does not repair the document; the only coercion
// applied anywhere is the aspect_ratio default, which happens before
// validation.
func (d *Document) Validate() error {
	if d.TotalSegments < MinSegments || d.TotalSegments > MaxSegments {
		return fmt.Errorf("total_segments must be between %d and %d, got %d", MinSegments, MaxSegments, d.TotalSegments)
	}
	if len(d.Segments) != d.TotalSegments {
		return fmt.Errorf("segments length %d does not match total_segments %d", len(d.Segments), d.TotalSegments)
	}
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	if d.NarrativeArc == "" {
		return fmt.Errorf("narrative_arc is required")
	}

	durationSum := 0
	for i := range d.Segments {
		seg := &d.Segments[i]
		if seg.SegmentNumber != i+1 {
			return fmt.Errorf("segment at position %d has segment_number %d, want %d", i+1, seg.SegmentNumber, i+1)
		}
		if seg.DurationSeconds < MinSegmentSeconds || seg.DurationSeconds > MaxSegmentSeconds {
			return fmt.Errorf("segment %d duration_seconds must be between %d and %d, got %d",
				seg.SegmentNumber, MinSegmentSeconds, MaxSegmentSeconds, seg.DurationSeconds)
		}
		if seg.SegmentNumber == 1 && seg.Hook == "" {
			return fmt.Errorf("segment 1 must have a hook")
		}
		if seg.SegmentNumber > 1 && seg.Hook != "" {
			return fmt.Errorf("segment %d must not have a hook", seg.SegmentNumber)
		}
		if err := seg.validateFields(); err != nil {
			return err
		}
		durationSum += seg.DurationSeconds
	}

	if durationSum != d.TotalDurationSeconds {
		return fmt.Errorf("total_duration_seconds %d does not equal segment duration sum %d", d.TotalDurationSeconds, durationSum)
	}

	return nil
}

func (s *Segment) validateFields() error {
	required := []struct {
		name  string
		value string
	}{
		{"title", s.Title},
		{"tone", s.Tone},
		{"aspect_ratio", s.AspectRatio},
		{"location", s.Location},
		{"lighting", s.Lighting},
		{"ambient_sounds", s.AmbientSounds},
		{"camera.type", s.Camera.Type},
		{"camera.style", s.Camera.Style},
		{"camera.movement", s.Camera.Movement},
		{"camera.quality", s.Camera.Quality},
		{"audio.mix_style", s.Audio.MixStyle},
		{"end_state", s.EndState},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("segment %d is missing required field %s", s.SegmentNumber, f.name)
		}
	}

	if len(s.Characters) == 0 {
		return fmt.Errorf("segment %d must have at least one character", s.SegmentNumber)
	}
	for i, ch := range s.Characters {
		if ch.Role == "" {
			return fmt.Errorf("segment %d character %d is missing required field role", s.SegmentNumber, i+1)
		}
	}

	return nil
}

// applyDefaults fills documented defaults on absent fields
func (d *Document) applyDefaults() {
	for i := range d.Segments {
		if d.Segments[i].AspectRatio == "" {
			d.Segments[i].AspectRatio = DefaultAspectRatio
		}
	}
}
