package videoprompt

import (
	"fmt"
	"strings"
)

// SystemPromptSegmentation instructs the model to emit the shot-list JSON.
// The schema description must stay in sync with Document.
const SystemPromptSegmentation = `You are a cinematic prompt engineer for AI video generators. Given a short-form video transcript, break it into 2-4 timed segments of 6-8 seconds each and describe every segment as a complete, self-contained shot.

Return a single JSON object with EXACTLY this structure:
{
  "title": "short video title",
  "total_segments": <2-4>,
  "total_duration_seconds": <sum of all segment durations>,
  "narrative_arc": "one sentence describing the story progression across segments",
  "segments": [
    {
      "segment_number": 1,
      "duration_seconds": <6-8>,
      "title": "shot title",
      "tone": "emotional tone",
      "aspect_ratio": "9:16",
      "hook": "attention-grabbing opening moment (segment 1 ONLY)",
      "location": "where the shot takes place",
      "lighting": "lighting description",
      "ambient_sounds": "background sound description",
      "camera": {"type": "...", "style": "...", "movement": "...", "quality": "..."},
      "characters": [
        {"role": "...", "appearance": "...", "action": "...", "dialogue": "...", "motion": "..."}
      ],
      "visual_effects": ["tag", "tag"],
      "audio": {"mix_style": "...", "background_elements": ["...", "..."]},
      "end_state": "final frame or transition description"
    }
  ]
}

HARD RULES:
- total_segments is an integer between 2 and 4 and equals the length of "segments"
- segment_number values are sequential starting at 1
- every duration_seconds is an integer between 6 and 8
- total_duration_seconds is an integer equal to the exact sum of duration_seconds
- "hook" appears on segment 1 only; no other segment may include it
- aspect_ratio is "9:16" unless the transcript demands otherwise
- dialogue lines come from the transcript, split naturally across segments
- return ONLY the JSON object, no markdown fences, no commentary`

// styleConventions holds the per-style shot-direction guidance appended to
// the segmentation prompt.
var styleConventions = map[Style]string{
	StyleSora: `STYLE CONVENTIONS (Sora):
- Lean into photorealistic, handheld, social-media-native shots
- Favor natural lighting and candid framing over staged compositions
- Camera quality should read like a modern phone or mirrorless camera
- Keep visual effects subtle: light leaks, slight grain, natural motion blur`,

	StyleVeo: `STYLE CONVENTIONS (Veo):
- Lean into polished, cinematic compositions with deliberate camera moves
- Favor dramatic lighting: golden hour, rim light, volumetric haze
- Camera quality should read like cinema glass: shallow depth of field, 4K
- Visual effects may be bolder: speed ramps, match cuts, stylized color grades`,
}

// buildSystemPrompt assembles the full system prompt for a style and cameo set
func buildSystemPrompt(style Style, cameos []string) string {
	var b strings.Builder
	b.WriteString(SystemPromptSegmentation)
	b.WriteString("\n\n")
	b.WriteString(styleConventions[style])

	if len(cameos) > 0 {
		b.WriteString("\n\nCAMEO IDENTITIES:\n")
		b.WriteString(fmt.Sprintf("The following %d identity handle(s) MUST appear as character roles, spelled exactly as given: %s.\n",
			len(cameos), strings.Join(cameos, ", ")))
		b.WriteString(`Use each handle verbatim as the "role" value of a character in at least one segment. Additional generic characters may use descriptive roles.`)
	}

	return b.String()
}

// UserPromptSegmentTemplate wraps the transcript for the user message
const UserPromptSegmentTemplate = `Create the segmented video prompt JSON for this transcript:

%s`
