package videoprompt

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscribe/internal/llm"
)

type fakeCompleter struct {
	responses map[string]string
	errs      map[string]error
	prompts   []string
}

func (f *fakeCompleter) ChatCompletion(ctx context.Context, model string, messages []llm.ChatMessage, opts llm.ChatOptions) (string, error) {
	if len(messages) > 0 {
		f.prompts = append(f.prompts, messages[0].Content)
	}
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

func marshalDoc(t *testing.T, doc *Document) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

func newSegmenter(completer llm.ChatCompleter, models ...string) *Segmenter {
	return NewSegmenter(llm.NewChain(completer, models))
}

func TestSegment_Success(t *testing.T) {
	doc := validDocument(3)
	completer := &fakeCompleter{responses: map[string]string{"m1": marshalDoc(t, doc)}}
	seg := newSegmenter(completer, "m1")

	got, err := seg.Segment(context.Background(), "Aaj main gym ja raha hun. Warm-up done. First rep.", StyleSora, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalSegments)
	assert.Equal(t, 21, got.TotalDurationSeconds)
	assert.Equal(t, "He pushes the door open mid-sentence", got.Segments[0].Hook)
}

func TestSegment_FencedResponse(t *testing.T) {
	doc := validDocument(2)
	fenced := "```json\n" + marshalDoc(t, doc) + "\n```"
	completer := &fakeCompleter{responses: map[string]string{"m1": fenced}}
	seg := newSegmenter(completer, "m1")

	got, err := seg.Segment(context.Background(), "script", StyleVeo, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalSegments)
}

func TestSegment_CameoWovenIntoPrompt(t *testing.T) {
	doc := validDocument(2)
	doc.Segments[0].Characters[0].Role = "dhruvagr"
	completer := &fakeCompleter{responses: map[string]string{"m1": marshalDoc(t, doc)}}
	seg := newSegmenter(completer, "m1")

	got, err := seg.Segment(context.Background(), "three sentence script here", StyleSora, []string{"@DhruvAgr"})
	require.NoError(t, err)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "dhruvagr")
	assert.NotContains(t, completer.prompts[0], "@DhruvAgr")
	assert.Equal(t, "dhruvagr", got.Segments[0].Characters[0].Role)
}

func TestSegment_TooManyCameosRejectedBeforeNetwork(t *testing.T) {
	completer := &fakeCompleter{}
	seg := newSegmenter(completer, "m1")

	_, err := seg.Segment(context.Background(), "script", StyleSora, []string{"a", "b", "c", "d"})
	require.Error(t, err)

	var serr *SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FailureInvalidCameos, serr.Reason)
	assert.Empty(t, completer.prompts, "no network call may happen on invalid cameo input")
}

func TestSegment_EmptyInput(t *testing.T) {
	seg := newSegmenter(&fakeCompleter{}, "m1")
	_, err := seg.Segment(context.Background(), "  \n", StyleSora, nil)
	require.Error(t, err)

	var serr *SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FailureEmptyInput, serr.Reason)
}

func TestSegment_ParseFailureAdvancesChain(t *testing.T) {
	doc := validDocument(2)
	completer := &fakeCompleter{responses: map[string]string{
		"m1": "sorry, I cannot produce JSON today",
		"m2": marshalDoc(t, doc),
	}}
	seg := newSegmenter(completer, "m1", "m2")

	got, err := seg.Segment(context.Background(), "script", StyleSora, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalSegments)
}

func TestSegment_ParseFailureExhausted(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]string{
		"m1": "not json",
		"m2": "still not json",
	}}
	seg := newSegmenter(completer, "m1", "m2")

	_, err := seg.Segment(context.Background(), "script", StyleSora, nil)
	require.Error(t, err)

	var serr *SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FailureSchemaInvalid, serr.Reason)
}

func TestSegment_ModelUnavailable(t *testing.T) {
	completer := &fakeCompleter{errs: map[string]error{
		"m1": &llm.APIError{StatusCode: 500, Body: "down"},
		"m2": &llm.APIError{StatusCode: http.StatusTooManyRequests, Body: "quota"},
	}}
	seg := newSegmenter(completer, "m1", "m2")

	_, err := seg.Segment(context.Background(), "script", StyleSora, nil)
	require.Error(t, err)

	var serr *SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FailureModelUnavailable, serr.Reason)
}

func TestSegment_SchemaViolationFailsWithoutCoercion(t *testing.T) {
	doc := validDocument(2)
	doc.TotalDurationSeconds = 99
	completer := &fakeCompleter{responses: map[string]string{"m1": marshalDoc(t, doc)}}
	seg := newSegmenter(completer, "m1")

	_, err := seg.Segment(context.Background(), "script", StyleSora, nil)
	require.Error(t, err)

	var serr *SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FailureSchemaInvalid, serr.Reason)
	assert.Contains(t, serr.Cause.Error(), "total_duration_seconds")
}

func TestSegment_StringDurationIsSchemaViolation(t *testing.T) {
	// Some generators emit "18-24s" style strings; integers are the contract
	raw := strings.Replace(marshalDoc(t, validDocument(2)), `"total_duration_seconds":14`, `"total_duration_seconds":"12-16s"`, 1)
	require.Contains(t, raw, `"12-16s"`)
	completer := &fakeCompleter{responses: map[string]string{"m1": raw}}
	seg := newSegmenter(completer, "m1")

	_, err := seg.Segment(context.Background(), "script", StyleSora, nil)
	require.Error(t, err)

	var serr *SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FailureSchemaInvalid, serr.Reason)
}

func TestParseStyle(t *testing.T) {
	for input, want := range map[string]Style{
		"":     StyleSora,
		"sora": StyleSora,
		"SORA": StyleSora,
		"veo":  StyleVeo,
		" Veo": StyleVeo,
	} {
		got, err := ParseStyle(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseStyle("runway")
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	doc := `{"title":"x"}`
	cases := []string{
		doc,
		"```json\n" + doc + "\n```",
		"```\n" + doc + "\n```",
		"Here is your JSON:\n" + doc + "\nHope that helps!",
	}
	for _, c := range cases {
		assert.Equal(t, doc, extractJSON(c))
	}
}
