package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscribe/internal/config"
	"reelscribe/internal/downloader"
	"reelscribe/internal/pipeline"
	"reelscribe/internal/store"
	"reelscribe/internal/videoprompt"
)

type fakeDownloader struct {
	err  error
	opts *downloader.Options
}

func (f *fakeDownloader) Download(ctx context.Context, url, destDir string, opts downloader.Options) (*downloader.Media, error) {
	f.opts = &opts
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	media := &downloader.Media{
		FolderPath: destDir,
		VideoPath:  "",
		Caption:    "reel caption",
	}
	if opts.Audio {
		media.AudioPath = filepath.Join(destDir, "audio1.mp3")
		if err := os.WriteFile(media.AudioPath, []byte("fake-audio"), 0644); err != nil {
			return nil, err
		}
	}
	return media, nil
}

type fakePipeline struct {
	result    *pipeline.Result
	err       error
	opts      *pipeline.Options
	audioPath string
}

func (f *fakePipeline) Run(ctx context.Context, audioPath string, opts pipeline.Options, progress pipeline.ProgressFunc) (*pipeline.Result, error) {
	f.audioPath = audioPath
	f.opts = &opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testServer(t *testing.T, apiKey string, p PipelineRunner) (*Server, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)

	cfg := &config.Config{
		GroqAPIKey: apiKey,
		OutputDir:  t.TempDir(),
	}
	return New(cfg, &fakeDownloader{}, p, st), st
}

func postDownload(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/download", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, "key", &fakePipeline{})
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
}

func TestValidateURL(t *testing.T) {
	s, _ := testServer(t, "key", &fakePipeline{})

	cases := []struct {
		query string
		code  int
		valid bool
	}{
		{"?url=https://www.instagram.com/reel/Cxyz123/", http.StatusOK, true},
		{"?url=https://example.com/reel/Cxyz123/", http.StatusOK, false},
		{"", http.StatusBadRequest, false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/api/validate-url"+tc.query, nil)
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		assert.Equal(t, tc.code, w.Code, tc.query)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.valid, resp["valid"], tc.query)
	}
}

func TestDownload_InvalidURL(t *testing.T) {
	s, _ := testServer(t, "key", &fakePipeline{})
	w := postDownload(t, s, gin.H{"url": "https://example.com/watch?v=x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_HinglishRequiresAPIKey(t *testing.T) {
	s, _ := testServer(t, "", &fakePipeline{})
	w := postDownload(t, s, gin.H{
		"url":             "https://www.instagram.com/reel/Cxyz123/",
		"transcribe":      true,
		"enable_hinglish": true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "GROQ_API_KEY")
}

func TestDownload_TooManyCameosRejected(t *testing.T) {
	s, _ := testServer(t, "key", &fakePipeline{})
	w := postDownload(t, s, gin.H{
		"url":    "https://www.instagram.com/reel/Cxyz123/",
		"cameos": []string{"a", "b", "c", "d"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_UnknownStyleRejected(t *testing.T) {
	s, _ := testServer(t, "key", &fakePipeline{})
	w := postDownload(t, s, gin.H{
		"url":          "https://www.instagram.com/reel/Cxyz123/",
		"prompt_style": "runway",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_FullPipeline(t *testing.T) {
	doc := &videoprompt.Document{Title: "Gym Day", TotalSegments: 2}
	p := &fakePipeline{result: &pipeline.Result{
		RawTranscript:     "aaj mai gym ja raha hu",
		CleanedTranscript: "Aaj main gym ja raha hun.",
		VideoPrompts:      doc,
	}}
	s, st := testServer(t, "key", p)

	w := postDownload(t, s, gin.H{
		"url":              "https://www.instagram.com/reel/Cxyz123/",
		"transcribe":       true,
		"enable_hinglish":  true,
		"generate_prompts": true,
		"prompt_style":     "veo",
		"cameos":           []string{"@DhruvAgr"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Aaj main gym ja raha hun.", resp.Transcript)
	assert.Equal(t, "aaj mai gym ja raha hu", resp.RawTranscript)
	require.NotNil(t, resp.VideoPrompts)
	assert.Equal(t, "Gym Day", resp.VideoPrompts.Title)

	// Pipeline received the request options
	require.NotNil(t, p.opts)
	assert.True(t, p.opts.EnableNormalization)
	assert.Equal(t, videoprompt.StyleVeo, p.opts.PromptStyle)
	assert.Equal(t, []string{"@DhruvAgr"}, p.opts.Cameos)

	// Audio and transcript artifacts come back as base64 files
	types := make(map[string]bool)
	for _, f := range resp.Files {
		types[f.Type] = true
		assert.NotEmpty(t, f.Data)
	}
	assert.True(t, types["audio"])
	assert.True(t, types["transcript"])

	// Job history reflects the completed run
	jobs, err := st.Recent(1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, store.StatusCompleted, jobs[0].Status)
	assert.Contains(t, jobs[0].PromptJSON, "Gym Day")
}

func TestDownload_TranscribeForcesAudioExtraction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := &fakePipeline{result: &pipeline.Result{RawTranscript: "raw", CleanedTranscript: "raw"}}
	d := &fakeDownloader{}
	cfg := &config.Config{GroqAPIKey: "key", OutputDir: t.TempDir()}
	s := New(cfg, d, p, nil)

	w := postDownload(t, s, gin.H{
		"url":        "https://www.instagram.com/reel/Cxyz123/",
		"transcribe": true,
		"audio":      false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Audio is extracted for the pipeline even when the client declined it
	require.NotNil(t, d.opts)
	assert.True(t, d.opts.Audio)
	assert.NotEmpty(t, p.audioPath)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "raw", resp.Transcript)
	for _, f := range resp.Files {
		assert.NotEqual(t, "audio", f.Type, "declined audio must not come back in the response")
	}
}

func TestDownload_PartialFailureStillReturnsTranscript(t *testing.T) {
	p := &fakePipeline{result: &pipeline.Result{
		RawTranscript:     "raw",
		CleanedTranscript: "cleaned",
		Errors: []pipeline.StageError{
			{Stage: pipeline.StageSegmenting, Error: "segmentation failed (schema_invalid): bad schema"},
		},
	}}
	s, _ := testServer(t, "key", p)

	w := postDownload(t, s, gin.H{
		"url":              "https://www.instagram.com/reel/Cxyz123/",
		"transcribe":       true,
		"generate_prompts": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cleaned", resp.Transcript)
	assert.Nil(t, resp.VideoPrompts)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, pipeline.StageSegmenting, resp.Errors[0].Stage)
}
