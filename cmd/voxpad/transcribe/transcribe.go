// Package transcribe defines the contract between the orchestration layer and
// the speech engines. Any engine producing text plus a detected language tag
// from canonical audio is substitutable behind the Transcriber interface.
package transcribe

import "context"

const (
	// SampleRate is the sample rate of canonical audio (Hz).
	SampleRate = 16000
	// Channels is the number of channels of canonical audio.
	Channels = 1

	// LanguageUnknown is reported when the engine cannot determine the
	// spoken language.
	LanguageUnknown = "unknown"
)

type Result struct {
	// The recognized text. May be empty (e.g. pure silence) but is always
	// set on a successful call.
	Text string
	// Short language tag (e.g. "en"), or LanguageUnknown.
	Language string
}

type Transcriber interface {
	// Transcribe recognizes a whole utterance from canonical audio samples
	// (16kHz, mono, float32 PCM). Implementations are not required to be
	// reentrant; callers get serialization through the implementation's own
	// locking.
	Transcribe(ctx context.Context, samples []float32) (Result, error)
	Destroy() error
}
