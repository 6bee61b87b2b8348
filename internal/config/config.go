// Package config resolves application configuration once at startup.
// The resulting Config is immutable for the process lifetime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"reelscribe/pkg/logger"
)

const (
	// DefaultWhisperModel is the Groq transcription model used when none is configured
	DefaultWhisperModel = "whisper-large-v3"
	// DefaultRequestTimeout bounds each transcription or chat completion call.
	// Long reels plus LLM post-processing can take minutes, so this is generous.
	DefaultRequestTimeout = 5 * time.Minute
)

// DefaultLLMModels is the ordered fallback chain of chat models. The primary
// model has the tightest per-minute token quota; the later entries trade
// quality for availability.
var DefaultLLMModels = []string{
	"meta-llama/llama-4-scout-17b-16e-instruct",
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
}

// Config holds all resolved settings
type Config struct {
	GroqAPIKey     string
	GroqBaseURL    string
	WhisperModel   string
	LLMModels      []string
	RequestTimeout time.Duration
	OutputDir      string
	DatabasePath   string
	Host           string
	Port           int
	LogLevel       string
	YtDlpPath      string
	FFmpegPath     string
}

// Load reads configuration from environment variables, an optional .env file,
// and an optional config file. apiKeyOverride, when non-empty, wins over every
// other API key source.
func Load(apiKeyOverride string) (*Config, error) {
	// .env values populate the environment without clobbering real env vars
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix("REELSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("whisper_model", DefaultWhisperModel)
	v.SetDefault("llm_models", DefaultLLMModels)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("output_dir", "downloads")
	v.SetDefault("database_path", "reelscribe.db")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")
	v.SetDefault("groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("ytdlp_path", "yt-dlp")
	v.SetDefault("ffmpeg_path", "ffmpeg")

	v.SetConfigName("reelscribe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err == nil {
		logger.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	cfg := &Config{
		GroqAPIKey:     resolveAPIKey(apiKeyOverride, v),
		GroqBaseURL:    v.GetString("groq_base_url"),
		WhisperModel:   v.GetString("whisper_model"),
		LLMModels:      v.GetStringSlice("llm_models"),
		RequestTimeout: v.GetDuration("request_timeout"),
		OutputDir:      v.GetString("output_dir"),
		DatabasePath:   v.GetString("database_path"),
		Host:           v.GetString("host"),
		Port:           v.GetInt("port"),
		LogLevel:       v.GetString("log_level"),
		YtDlpPath:      v.GetString("ytdlp_path"),
		FFmpegPath:     v.GetString("ffmpeg_path"),
	}

	if len(cfg.LLMModels) == 0 {
		return nil, fmt.Errorf("llm model list must not be empty")
	}

	return cfg, nil
}

// resolveAPIKey tries key sources in priority order: explicit parameter,
// GROQ_API_KEY, then the legacy GROQ_API_TOKEN alias. The .env file was
// already merged into the environment by Load.
func resolveAPIKey(override string, v *viper.Viper) string {
	if override != "" {
		return override
	}

	env := viper.New()
	env.AutomaticEnv()
	for _, name := range []string{"GROQ_API_KEY", "GROQ_API_TOKEN"} {
		if key := strings.TrimSpace(env.GetString(name)); key != "" && !strings.HasPrefix(key, "gsk_your") {
			return key
		}
	}
	return ""
}

// HasAPIKey reports whether a usable Groq API key was resolved
func (c *Config) HasAPIKey() bool {
	return c.GroqAPIKey != ""
}

// ListenAddr returns the host:port pair for the HTTP server
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
