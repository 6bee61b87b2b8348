// Package store persists the job history of download/transcription runs.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reelscribe/internal/pipeline"
)

// Job statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job records one pipeline invocation
type Job struct {
	ID                string `gorm:"primaryKey"`
	URL               string `gorm:"index"`
	Status            string `gorm:"index"`
	RawTranscript     string
	CleanedTranscript string
	PromptJSON        string
	ErrorDetail       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Store wraps the sqlite job history database
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the job history database at path
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}
	if err := db.AutoMigrate(&Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate job store: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateJob inserts a pending job for url and returns it
func (s *Store) CreateJob(url string) (*Job, error) {
	job := &Job{
		ID:     uuid.NewString(),
		URL:    url,
		Status: StatusPending,
	}
	if err := s.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// Complete marks the job done and stores the pipeline output. The prompt
// document is serialized as the same JSON the API returns.
func (s *Store) Complete(jobID string, result *pipeline.Result) error {
	updates := map[string]any{
		"status":             StatusCompleted,
		"raw_transcript":     result.RawTranscript,
		"cleaned_transcript": result.CleanedTranscript,
	}
	if result.VideoPrompts != nil {
		data, err := json.Marshal(result.VideoPrompts)
		if err != nil {
			return fmt.Errorf("failed to marshal prompt document: %w", err)
		}
		updates["prompt_json"] = string(data)
	}
	if len(result.Errors) > 0 {
		data, _ := json.Marshal(result.Errors)
		updates["error_detail"] = string(data)
	}
	return s.db.Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error
}

// Fail marks the job failed with the given cause
func (s *Store) Fail(jobID string, cause error) error {
	return s.db.Model(&Job{}).Where("id = ?", jobID).Updates(map[string]any{
		"status":       StatusFailed,
		"error_detail": cause.Error(),
	}).Error
}

// Recent returns the newest jobs, most recent first
func (s *Store) Recent(limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []Job
	err := s.db.Order("created_at desc").Limit(limit).Find(&jobs).Error
	return jobs, err
}

// Get returns one job by id
func (s *Store) Get(jobID string) (*Job, error) {
	var job Job
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}
