package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reelscribe/internal/config"
	"reelscribe/internal/downloader"
	"reelscribe/internal/llm"
	"reelscribe/internal/media"
	"reelscribe/internal/pipeline"
	"reelscribe/internal/postprocessor"
	"reelscribe/internal/server"
	"reelscribe/internal/session"
	"reelscribe/internal/store"
	"reelscribe/internal/transcription"
	"reelscribe/internal/videoprompt"
	"reelscribe/pkg/logger"
)

var (
	flagAPIKey   string
	flagHinglish bool
	flagPrompts  bool
	flagStyle    string
	flagCameos   []string
	flagLanguage string
)

func main() {
	root := &cobra.Command{
		Use:   "reelscribe",
		Short: "Download Instagram reels, transcribe them, and generate AI video prompts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Groq API key (overrides environment)")

	root.AddCommand(newServeCmd(), newRunCmd(), newBatchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildPipeline wires the full stack from config
func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	chain := llm.NewChain(
		llm.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.RequestTimeout),
		cfg.LLMModels,
	)

	transcriber := media.NewCompressingTranscriber(
		media.NewCompressor(cfg.FFmpegPath),
		transcription.NewAdapter(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.WhisperModel, cfg.RequestTimeout),
	)

	return pipeline.New(
		transcriber,
		postprocessor.NewNormalizer(chain),
		videoprompt.NewSegmenter(chain),
	)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagAPIKey)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}

			srv := server.New(cfg,
				downloader.NewYtDlpAgent(cfg.YtDlpPath, cfg.FFmpegPath),
				buildPipeline(cfg),
				st,
			)

			logger.Info("Starting API server", "addr", cfg.ListenAddr())
			return srv.Run()
		},
	}
}

func pipelineOptions() (pipeline.Options, error) {
	style, err := videoprompt.ParseStyle(flagStyle)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		EnableNormalization: flagHinglish,
		GeneratePrompts:     flagPrompts,
		PromptStyle:         style,
		Cameos:              flagCameos,
		LanguageHint:        flagLanguage,
	}, nil
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagHinglish, "hinglish", true, "normalize the transcript with the LLM")
	cmd.Flags().BoolVar(&flagPrompts, "prompts", false, "generate video prompt segments")
	cmd.Flags().StringVar(&flagStyle, "style", "sora", "prompt style: sora or veo")
	cmd.Flags().StringSliceVar(&flagCameos, "cameo", nil, "cameo handle to weave into character roles (max 3)")
	cmd.Flags().StringVar(&flagLanguage, "language", "", "language hint for transcription (ISO-639-1)")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <instagram-url|audio-file>",
		Short: "Process a single reel URL or local audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts, err := pipelineOptions()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			audioPath := args[0]
			if downloader.IsValidInstagramURL(args[0]) {
				sessions := session.NewManager(cfg.OutputDir)
				if _, err := sessions.Setup(); err != nil {
					return err
				}
				folder, err := sessions.ReelFolder(1)
				if err != nil {
					return err
				}

				agent := downloader.NewYtDlpAgent(cfg.YtDlpPath, cfg.FFmpegPath)
				item, err := agent.Download(ctx, args[0], folder, downloader.Options{
					Audio: true, Thumbnail: true, Caption: true,
				})
				if err != nil {
					return err
				}
				audioPath = item.AudioPath
			}

			result, err := buildPipeline(cfg).Run(ctx, audioPath, opts, printProgress)
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	addPipelineFlags(cmd)
	return cmd
}

func newBatchCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "batch <url-list-file>",
		Short: "Process a file of Instagram URLs, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts, err := pipelineOptions()
			if err != nil {
				return err
			}

			urls, err := readURLList(args[0])
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs found in %s", args[0])
			}

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}

			sessions := session.NewManager(cfg.OutputDir)
			if _, err := sessions.Setup(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := buildPipeline(cfg)
			agent := downloader.NewYtDlpAgent(cfg.YtDlpPath, cfg.FFmpegPath)

			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)

			for i, url := range urls {
				number := i + 1
				url := url
				g.Go(func() error {
					job, err := st.CreateJob(url)
					if err != nil {
						return err
					}

					folder, err := sessions.ReelFolder(number)
					if err != nil {
						return err
					}

					item, err := agent.Download(ctx, url, folder, downloader.Options{
						Audio: true, Thumbnail: true, Caption: true,
					})
					if err != nil {
						logger.Error("Reel failed", "url", url, "error", err)
						_ = st.Fail(job.ID, err)
						// One bad reel does not stop the batch
						return nil
					}

					result, err := p.Run(ctx, item.AudioPath, opts, func(stage pipeline.Stage, message string) {
						logger.Info("Progress", "reel", number, "stage", string(stage), "message", message)
					})
					if err != nil {
						logger.Error("Pipeline failed", "url", url, "error", err)
						_ = st.Fail(job.ID, err)
						return nil
					}

					if _, err := pipeline.WriteTranscriptFile(folder, number, result); err != nil {
						logger.Warn("Failed to write transcript file", "reel", number, "error", err)
					}
					return st.Complete(job.ID, result)
				})
			}

			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "maximum reels processed in parallel")
	addPipelineFlags(cmd)
	return cmd
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func printProgress(stage pipeline.Stage, message string) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", stage, message)
}

func printResult(result *pipeline.Result) error {
	fmt.Println("=== TRANSCRIPT ===")
	fmt.Println(result.CleanedTranscript)

	if result.VideoPrompts != nil {
		data, err := json.MarshalIndent(result.VideoPrompts, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println("\n=== VIDEO PROMPTS ===")
		fmt.Println(string(data))
	}

	for _, stageErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s stage: %s\n", stageErr.Stage, stageErr.Error)
	}
	return nil
}
