// Package app wires the HTTP surface of the tool: a single interactive page
// backed by the transcription orchestrator and per-session state.
package app

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	recovermw "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/voxpad/voxpad/cmd/voxpad/capture"
	"github.com/voxpad/voxpad/cmd/voxpad/config"
	"github.com/voxpad/voxpad/cmd/voxpad/session"
	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

//go:embed index.html
var indexHTML []byte

type App struct {
	cfg   config.Config
	fib   *fiber.App
	store *session.Store
	orch  *Orchestrator
	// mic is nil when microphone capture is disabled.
	mic capture.Source

	errCh    chan error
	doneCh   chan struct{}
	doneOnce sync.Once
}

// New creates the application. The engine is the process-wide transcription
// instance, constructed once at startup and injected here; it is never
// reloaded per request.
func New(cfg config.Config, engine transcribe.Transcriber, scorer Scorer, mic capture.Source) (*App, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	orch, err := NewOrchestrator(engine, scorer, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	a := &App{
		cfg:    cfg,
		store:  session.NewStore(),
		orch:   orch,
		mic:    mic,
		errCh:  make(chan error, 1),
		doneCh: make(chan struct{}),
	}

	a.fib = fiber.New(fiber.Config{
		AppName:               "voxpad",
		BodyLimit:             cfg.MaxUploadSizeMB * 1024 * 1024,
		DisableStartupMessage: true,
	})
	a.fib.Use(recovermw.New())

	a.fib.Get("/", a.handleIndex)
	a.fib.Post("/api/transcribe/upload", a.handleUpload)
	a.fib.Post("/api/transcribe/record", a.handleRecord)
	a.fib.Post("/api/sentiment", a.handleSentiment)
	a.fib.Get("/audio/preview", a.handlePreview)

	return a, nil
}

// Start begins serving and returns immediately. Use Done and Err to observe
// listener failures.
func (a *App) Start() error {
	go func() {
		if err := a.fib.Listen(a.cfg.HTTPAddr); err != nil {
			a.errCh <- fmt.Errorf("listener failed: %w", err)
		}
		a.done()
	}()

	slog.Info("listening", slog.String("addr", a.cfg.HTTPAddr))

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if err := a.fib.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	a.done()
	return nil
}

func (a *App) Done() <-chan struct{} {
	return a.doneCh
}

func (a *App) Err() error {
	select {
	case err := <-a.errCh:
		return err
	default:
		return nil
	}
}

func (a *App) done() {
	a.doneOnce.Do(func() {
		close(a.doneCh)
	})
}
