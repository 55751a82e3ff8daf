package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/voxpad/voxpad/cmd/voxpad/audio"
	"github.com/voxpad/voxpad/cmd/voxpad/capture"
	"github.com/voxpad/voxpad/cmd/voxpad/sentiment"
	"github.com/voxpad/voxpad/cmd/voxpad/session"
	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

// phase tracks where a single user action is in its lifecycle. Every action
// starts at idle and ends at ready or at one of the failure phases; failures
// are terminal for that action and require a fresh user-initiated attempt (no
// automatic retries).
type phase string

const (
	phaseIdle                phase = "idle"
	phaseCaptureInProgress   phase = "capture_in_progress"
	phaseTranscribing        phase = "transcribing"
	phaseReady               phase = "ready"
	phaseCaptureFailed       phase = "capture_failed"
	phaseTranscriptionFailed phase = "transcription_failed"
)

type Scorer interface {
	Score(text string) (sentiment.Result, error)
}

// Orchestrator drives a capture source through normalization and
// transcription, updates the session state on success, and gates sentiment
// scoring behind the detected-language check.
type Orchestrator struct {
	engine  transcribe.Transcriber
	scorer  Scorer
	dataDir string
}

func NewOrchestrator(engine transcribe.Transcriber, scorer Scorer, dataDir string) (*Orchestrator, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine should not be nil")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer should not be nil")
	}
	if dataDir == "" {
		return nil, fmt.Errorf("dataDir should not be empty")
	}

	return &Orchestrator{
		engine:  engine,
		scorer:  scorer,
		dataDir: dataDir,
	}, nil
}

func (o *Orchestrator) setPhase(from, to phase) phase {
	slog.Debug("phase transition", slog.String("from", string(from)), slog.String("to", string(to)))
	return to
}

// Transcribe runs one capture-then-transcribe cycle. On any failure the
// session state keeps its previous value: stale results are deliberately
// preserved so an earlier successful transcription can still be scored.
func (o *Orchestrator) Transcribe(ctx context.Context, state *session.State, src capture.Source) (transcribe.Result, error) {
	ph := o.setPhase(phaseIdle, phaseCaptureInProgress)

	blob, err := src.Capture(ctx)
	if err != nil {
		o.setPhase(ph, phaseCaptureFailed)
		return transcribe.Result{}, err
	}

	canonical, err := audio.Normalize(blob, o.dataDir)
	if err != nil {
		o.setPhase(ph, phaseCaptureFailed)
		return transcribe.Result{}, err
	}

	ph = o.setPhase(ph, phaseTranscribing)

	res, err := o.engine.Transcribe(ctx, canonical.Samples)
	if err != nil {
		o.setPhase(ph, phaseTranscriptionFailed)
		if rmErr := os.Remove(canonical.Path); rmErr != nil {
			slog.Error("failed to remove working file", slog.String("err", rmErr.Error()))
		}
		return transcribe.Result{}, fmt.Errorf("transcription failed: %w", err)
	}

	if res.Language == "" {
		res.Language = transcribe.LanguageUnknown
	}

	// The canonical copy is kept as the playback preview; the one it
	// replaces is no longer reachable and gets removed.
	if prev := state.SetTranscript(res.Text, res.Language, canonical.Path); prev != "" {
		if err := os.Remove(prev); err != nil && !os.IsNotExist(err) {
			slog.Error("failed to remove previous preview", slog.String("err", err.Error()))
		}
	}

	o.setPhase(ph, phaseReady)

	slog.Info("transcription completed",
		slog.String("language", res.Language),
		slog.Int("textLen", len(res.Text)))

	return res, nil
}

// CheckSentiment scores the session transcript. The scorer is only invoked
// once both gates pass: a transcript exists and its detected language is
// English.
func (o *Orchestrator) CheckSentiment(state *session.State) (sentiment.Result, error) {
	text, language, ok := state.Transcript()
	if !ok || text == "" {
		return sentiment.Result{}, ErrNoTranscript
	}

	if language != "en" {
		return sentiment.Result{}, &UnsupportedLanguageError{Language: language}
	}

	return o.scorer.Score(text)
}
