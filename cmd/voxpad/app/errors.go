package app

import (
	"errors"
	"fmt"
)

// ErrNoTranscript is returned when sentiment is requested before any
// transcription has succeeded in the session.
var ErrNoTranscript = errors.New("no transcribed text found, upload an audio file or record a voice input first")

// UnsupportedLanguageError is returned when sentiment is requested on a
// transcript whose detected language is not English.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("sentiment analysis is supported for English, detected language: %s", e.Language)
}
