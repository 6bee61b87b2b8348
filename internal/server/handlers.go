package server

import (
	"encoding/base64"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"reelscribe/internal/downloader"
	"reelscribe/internal/pipeline"
	"reelscribe/internal/videoprompt"
	"reelscribe/pkg/logger"
)

// DownloadRequest mirrors the options of the download endpoint
type DownloadRequest struct {
	URL             string   `json:"url" binding:"required"`
	Video           *bool    `json:"video"`
	Thumbnail       *bool    `json:"thumbnail"`
	Audio           *bool    `json:"audio"`
	Caption         *bool    `json:"caption"`
	Transcribe      bool     `json:"transcribe"`
	EnableHinglish  bool     `json:"enable_hinglish"`
	GeneratePrompts bool     `json:"generate_prompts"`
	PromptStyle     string   `json:"prompt_style"`
	Cameos          []string `json:"cameos" binding:"max=3"`
}

// MediaFile is one downloaded artifact returned as base64
type MediaFile struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// DownloadResponse is the download endpoint result
type DownloadResponse struct {
	Success       bool                  `json:"success"`
	Files         []MediaFile           `json:"files"`
	Caption       string                `json:"caption,omitempty"`
	Transcript    string                `json:"transcript,omitempty"`
	RawTranscript string                `json:"raw_transcript,omitempty"`
	VideoPrompts  *videoprompt.Document `json:"video_prompts,omitempty"`
	Errors        []pipeline.StageError `json:"errors,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// HealthResponse reports service availability
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
		Message: "API is operational",
	})
}

func (s *Server) handleValidateURL(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": "URL is required"})
		return
	}

	valid := downloader.IsValidInstagramURL(url)
	message := "Valid Instagram URL"
	if !valid {
		message = "Invalid Instagram URL"
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid, "message": message})
}

func (s *Server) handleJobs(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"jobs": []any{}})
		return
	}
	jobs, err := s.store.Recent(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) handleDownload(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if !downloader.IsValidInstagramURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid Instagram URL"})
		return
	}

	if req.Transcribe && req.EnableHinglish && !s.cfg.HasAPIKey() {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Groq API key not found in environment. Please set GROQ_API_KEY in .env file",
		})
		return
	}

	style, err := videoprompt.ParseStyle(req.PromptStyle)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	sessionFolder, err := s.sessions.Setup()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	reelFolder := filepath.Join(sessionFolder, "reel1")

	var jobID string
	if s.store != nil {
		if job, err := s.store.CreateJob(req.URL); err == nil {
			jobID = job.ID
		}
	}

	// Transcription works on the extracted audio, so it is fetched even when
	// the client did not ask for the audio file itself.
	media, err := s.downloader.Download(c.Request.Context(), req.URL, reelFolder, downloader.Options{
		Audio:     boolOpt(req.Audio, true) || req.Transcribe,
		Thumbnail: boolOpt(req.Thumbnail, true),
		Caption:   boolOpt(req.Caption, true),
	})
	if err != nil {
		s.failJob(jobID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	resp := DownloadResponse{Success: true, Caption: media.Caption}
	s.collectFiles(&resp, media, req)

	if req.Transcribe {
		result, err := s.pipeline.Run(c.Request.Context(), media.AudioPath, pipeline.Options{
			EnableNormalization: req.EnableHinglish,
			GeneratePrompts:     req.GeneratePrompts,
			PromptStyle:         style,
			Cameos:              req.Cameos,
		}, func(stage pipeline.Stage, message string) {
			logger.Debug("Pipeline progress", "stage", string(stage), "message", message)
		})
		if err != nil {
			// Transcription failed but the download succeeded; surface both
			resp.Error = err.Error()
			s.failJob(jobID, err)
		} else {
			resp.Transcript = result.CleanedTranscript
			resp.RawTranscript = result.RawTranscript
			resp.VideoPrompts = result.VideoPrompts
			resp.Errors = result.Errors

			if path, err := pipeline.WriteTranscriptFile(media.FolderPath, 1, result); err == nil {
				appendFile(&resp, path, "transcript")
			}
			if jobID != "" {
				if err := s.store.Complete(jobID, result); err != nil {
					logger.Warn("Failed to record job result", "job_id", jobID, "error", err)
				}
			}
		}
	} else if jobID != "" {
		_ = s.store.Complete(jobID, &pipeline.Result{})
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) failJob(jobID string, cause error) {
	if s.store != nil && jobID != "" {
		if err := s.store.Fail(jobID, cause); err != nil {
			logger.Warn("Failed to record job failure", "job_id", jobID, "error", err)
		}
	}
}

func (s *Server) collectFiles(resp *DownloadResponse, media *downloader.Media, req DownloadRequest) {
	if boolOpt(req.Video, true) {
		appendFile(resp, media.VideoPath, "video")
	}
	if boolOpt(req.Thumbnail, true) {
		appendFile(resp, media.ThumbnailPath, "thumbnail")
	}
	if boolOpt(req.Audio, true) {
		appendFile(resp, media.AudioPath, "audio")
	}
	if boolOpt(req.Caption, true) {
		appendFile(resp, media.CaptionPath, "caption")
	}
}

func appendFile(resp *DownloadResponse, path, fileType string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read media file for response", "path", path, "error", err)
		return
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	resp.Files = append(resp.Files, MediaFile{
		Type:     fileType,
		Data:     base64.StdEncoding.EncodeToString(data),
		Filename: filepath.Base(path),
		Size:     int64(len(data)),
		MimeType: mimeType,
	})
}

func boolOpt(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
