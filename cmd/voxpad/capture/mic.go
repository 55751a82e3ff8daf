package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/streamer45/silero-vad-go/speech"

	"github.com/voxpad/voxpad/cmd/voxpad/audio"
	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

const (
	framesPerBuffer = 512

	// VAD settings
	vadWindowSizeInSamples  = 512
	vadThreshold            = 0.5
	vadMinSilenceDurationMs = 150
	vadMinSpeechDurationMs  = 200
	vadSilencePadMs         = 32

	// End-of-utterance is declared once speech has been observed and this
	// much trailing silence has accumulated.
	trailingSilence = 1500 * time.Millisecond
	// Endpoint checks run at this cadence while recording.
	endpointCheckInterval = 500 * time.Millisecond

	maxUtteranceDefault = 30 * time.Second
)

type MicSourceConfig struct {
	// Path to the silero VAD onnx model used for endpoint detection.
	VADModelFile string
	// Hard cap on the utterance length. Defaults to 30s.
	MaxUtterance time.Duration
}

func (c MicSourceConfig) IsValid() error {
	if c.VADModelFile == "" {
		return fmt.Errorf("invalid VADModelFile: should not be empty")
	}

	if c.MaxUtterance < 0 {
		return fmt.Errorf("invalid MaxUtterance: should not be negative")
	}

	return nil
}

// MicSource records a single utterance from the default input device. Capture
// blocks until the speech detector declares the utterance finished, so a call
// spans the whole time the user is speaking. Only one capture can be in
// progress at a time.
type MicSource struct {
	cfg MicSourceConfig
	mut sync.Mutex
}

func NewMicSource(cfg MicSourceConfig) (*MicSource, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	if cfg.MaxUtterance == 0 {
		cfg.MaxUtterance = maxUtteranceDefault
	}

	return &MicSource{
		cfg: cfg,
	}, nil
}

func (s *MicSource) Capture(ctx context.Context) (audio.Blob, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return audio.Blob{}, fmt.Errorf("%w: failed to initialize audio host: %s", ErrUnavailable, err.Error())
	}
	defer func() {
		if err := portaudio.Terminate(); err != nil {
			slog.Error("failed to terminate audio host", slog.String("err", err.Error()))
		}
	}()

	sd, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            s.cfg.VADModelFile,
		SampleRate:           transcribe.SampleRate,
		WindowSize:           vadWindowSizeInSamples,
		Threshold:            vadThreshold,
		MinSilenceDurationMs: vadMinSilenceDurationMs,
		MinSpeechDurationMs:  vadMinSpeechDurationMs,
		SilencePadMs:         vadSilencePadMs,
	})
	if err != nil {
		return audio.Blob{}, fmt.Errorf("%w: failed to create speech detector: %s", ErrUnavailable, err.Error())
	}
	defer func() {
		if err := sd.Destroy(); err != nil {
			slog.Error("failed to destroy speech detector", slog.String("err", err.Error()))
		}
	}()

	buf := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(transcribe.Channels, 0, float64(transcribe.SampleRate), framesPerBuffer, buf)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("%w: failed to open input stream: %s", ErrUnavailable, err.Error())
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return audio.Blob{}, fmt.Errorf("%w: failed to start input stream: %s", ErrUnavailable, err.Error())
	}
	defer func() {
		if err := stream.Stop(); err != nil {
			slog.Error("failed to stop input stream", slog.String("err", err.Error()))
		}
	}()

	slog.Info("recording started")

	maxSamples := int(s.cfg.MaxUtterance.Seconds() * transcribe.SampleRate)
	checkEvery := int(endpointCheckInterval.Seconds() * transcribe.SampleRate)
	samples := make([]float32, 0, maxSamples)
	lastCheck := 0

	for len(samples) < maxSamples {
		if err := ctx.Err(); err != nil {
			return audio.Blob{}, fmt.Errorf("%w: capture interrupted: %s", ErrUnavailable, err.Error())
		}

		if err := stream.Read(); err != nil {
			return audio.Blob{}, fmt.Errorf("%w: failed to read from input stream: %s", ErrUnavailable, err.Error())
		}
		samples = append(samples, buf...)

		if len(samples)-lastCheck < checkEvery {
			continue
		}
		lastCheck = len(samples)

		done, err := utteranceFinished(sd, samples)
		if err != nil {
			return audio.Blob{}, fmt.Errorf("%w: speech detection failed: %s", ErrUnavailable, err.Error())
		}
		if done {
			break
		}
	}

	slog.Info("recording finished", slog.Float64("seconds", float64(len(samples))/transcribe.SampleRate))

	return audio.Blob{
		Data:   audio.EncodeWAV(samples),
		Format: "wav",
	}, nil
}

// utteranceFinished reports whether speech has been observed followed by
// enough trailing silence. The detector is stateful across calls, so it gets
// reset before re-scanning the buffer.
func utteranceFinished(sd *speech.Detector, samples []float32) (bool, error) {
	if err := sd.Reset(); err != nil {
		return false, fmt.Errorf("failed to reset detector: %w", err)
	}

	segments, err := sd.Detect(samples)
	if err != nil {
		return false, fmt.Errorf("failed to detect speech: %w", err)
	}

	if len(segments) == 0 {
		return false, nil
	}

	last := segments[len(segments)-1]
	if last.SpeechEndAt == 0 {
		// Speech is still in progress.
		return false, nil
	}

	bufEnd := float64(len(samples)) / transcribe.SampleRate
	return bufEnd-last.SpeechEndAt >= trailingSilence.Seconds(), nil
}
