package azure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

const (
	audioSampleRate = 16000
	audioBitDepth   = 16
	audioChannels   = 1

	recognizeTimeout = 60 * time.Second
)

type SpeechRecognizerConfig struct {
	SpeechKey    string
	SpeechRegion string
	// Language to recognize (e.g. "en-US"). Reported back on results as the
	// detected language tag; when empty, results carry "unknown".
	Language string
}

func (c SpeechRecognizerConfig) IsValid() error {
	if c.SpeechKey == "" {
		return fmt.Errorf("invalid SpeechKey: should not be empty")
	}

	if c.SpeechRegion == "" {
		return fmt.Errorf("invalid SpeechRegion: should not be empty")
	}

	return nil
}

// SpeechRecognizer transcribes one utterance at a time through the Azure
// Speech service. It satisfies the same contract as the local engine, so the
// two are interchangeable behind the transcribe.Transcriber interface.
type SpeechRecognizer struct {
	cfg SpeechRecognizerConfig
	mut sync.Mutex
}

func NewSpeechRecognizer(cfg SpeechRecognizerConfig) (*SpeechRecognizer, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	return &SpeechRecognizer{
		cfg: cfg,
	}, nil
}

func (s *SpeechRecognizer) Transcribe(ctx context.Context, samples []float32) (transcribe.Result, error) {
	if len(samples) == 0 {
		return transcribe.Result{}, fmt.Errorf("samples should not be empty")
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	cfg, err := speech.NewSpeechConfigFromSubscription(s.cfg.SpeechKey, s.cfg.SpeechRegion)
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to create speech config: %w", err)
	}
	defer cfg.Close()

	if s.cfg.Language != "" {
		if err := cfg.SetSpeechRecognitionLanguage(s.cfg.Language); err != nil {
			return transcribe.Result{}, fmt.Errorf("failed to set recognition language: %w", err)
		}
	}

	stream, err := audio.CreatePushAudioInputStream()
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to create audio stream: %w", err)
	}
	defer stream.Close()

	audioConfig, err := audio.NewAudioConfigFromStreamInput(stream)
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to create audio config: %w", err)
	}

	speechRecognizer, err := speech.NewSpeechRecognizerFromConfig(cfg, audioConfig)
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to create speech recognizer: %w", err)
	}
	defer speechRecognizer.Close()

	var texts []string
	var textsMut sync.Mutex
	doneCh := make(chan struct{})
	errCh := make(chan error, 1)

	speechRecognizer.Recognized(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()

		if event.Result.Reason == common.NoMatch {
			return
		}

		textsMut.Lock()
		texts = append(texts, event.Result.Text)
		textsMut.Unlock()
	})

	speechRecognizer.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		if event.Reason == common.Error {
			select {
			case errCh <- fmt.Errorf("recognition canceled: %s", event.ErrorDetails):
			default:
			}
		}
	})

	speechRecognizer.SessionStopped(func(event speech.SessionEventArgs) {
		defer event.Close()
		slog.Debug("session stopped", slog.String("sessionID", event.SessionID))
		close(doneCh)
	})

	if err := stream.Write(f32PCMToWAV(samples)); err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := <-speechRecognizer.StartContinuousRecognitionAsync(); err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to start recognizer: %w", err)
	}
	defer func() {
		if err := <-speechRecognizer.StopContinuousRecognitionAsync(); err != nil {
			slog.Error("failed to stop recognizer", slog.String("err", err.Error()))
		}
	}()

	// This is important as it flushes out any remaining audio data and makes
	// the service close the session once everything has been consumed.
	stream.CloseStream()

	select {
	case <-doneCh:
	case err := <-errCh:
		return transcribe.Result{}, err
	case <-ctx.Done():
		return transcribe.Result{}, ctx.Err()
	case <-time.After(recognizeTimeout):
		return transcribe.Result{}, fmt.Errorf("timed out waiting for transcription")
	}

	lang := transcribe.LanguageUnknown
	if s.cfg.Language != "" {
		// e.g. "en-US" -> "en", matching the short tags the local engine reports.
		lang = strings.ToLower(strings.SplitN(s.cfg.Language, "-", 2)[0])
	}

	textsMut.Lock()
	defer textsMut.Unlock()

	return transcribe.Result{
		Text:     strings.TrimSpace(strings.Join(texts, " ")),
		Language: lang,
	}, nil
}

func (s *SpeechRecognizer) Destroy() error {
	return nil
}
