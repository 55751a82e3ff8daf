package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voxpad/voxpad/cmd/voxpad/apis/azure"
	whisper "github.com/voxpad/voxpad/cmd/voxpad/apis/whisper.cpp"
	"github.com/voxpad/voxpad/cmd/voxpad/app"
	"github.com/voxpad/voxpad/cmd/voxpad/capture"
	"github.com/voxpad/voxpad/cmd/voxpad/config"
	"github.com/voxpad/voxpad/cmd/voxpad/sentiment"
	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

const (
	stopTimeout = 10 * time.Second
)

func slogReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		if source.File == "" {
			// Log from a dependency.
			if pc, file, line, ok := runtime.Caller(7); ok {
				if f := runtime.FuncForPC(pc); f != nil {
					source.File = filepath.Base(filepath.Dir(file)) + "/" + filepath.Base(file)
					source.Line = line
				}
			}
		} else {
			source.File = filepath.Base(source.File)
		}
	}
	return a
}

func newEngine(cfg config.Config) (transcribe.Transcriber, error) {
	switch cfg.TranscribeAPI {
	case config.TranscribeAPIAzure:
		return azure.NewSpeechRecognizer(azure.SpeechRecognizerConfig{
			SpeechKey:    cfg.AzureSpeechKey,
			SpeechRegion: cfg.AzureSpeechRegion,
		})
	default:
		return whisper.NewContext(whisper.Config{
			ModelFile:  cfg.ModelFile,
			NumThreads: cfg.NumThreads,
		})
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: slogReplaceAttr,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	cfg.SetDefaults()

	if err := cfg.IsValid(); err != nil {
		slog.Error("failed to validate config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// The engine is loaded once and shared for the lifetime of the process.
	engine, err := newEngine(cfg)
	if err != nil {
		slog.Error("failed to create transcription engine", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := engine.Destroy(); err != nil {
			slog.Error("failed to destroy transcription engine", slog.String("err", err.Error()))
		}
	}()

	var mic capture.Source
	if cfg.EnableMic {
		micSrc, err := capture.NewMicSource(capture.MicSourceConfig{
			VADModelFile: cfg.VADModelFile,
		})
		if err != nil {
			slog.Error("failed to create microphone source", slog.String("err", err.Error()))
			os.Exit(1)
		}
		mic = micSrc
	}

	a, err := app.New(cfg, engine, sentiment.NewAnalyzer(), mic)
	if err != nil {
		slog.Error("failed to create app", slog.String("err", err.Error()))
		os.Exit(1)
	}

	slog.Info("starting voxpad", slog.String("transcribeAPI", string(cfg.TranscribeAPI)))

	if err := a.Start(); err != nil {
		slog.Error("failed to start app", slog.String("err", err.Error()))
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-a.Done():
		if err := a.Err(); err != nil {
			slog.Error("app failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	case <-sig:
		slog.Info("received signal, stopping")
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := a.Stop(ctx); err != nil {
			slog.Error("failed to stop app", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	slog.Info("voxpad has finished, exiting")
}
