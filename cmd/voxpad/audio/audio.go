// Package audio converts user supplied audio (wav or mp3) into the canonical
// format the speech engines consume: 16kHz, mono, float32 PCM.
package audio

import (
	"errors"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Formats is the allow-list of supported input containers.
var Formats = []string{"wav", "mp3"}

// Blob is raw audio as produced by a capture source. It has no identity and
// lives for a single request.
type Blob struct {
	Data []byte
	// Declared container format, e.g. "wav" or "mp3".
	Format string
}

// Canonical is normalized audio ready for transcription: the decoded samples
// plus the path of a canonical wav copy written for playback.
type Canonical struct {
	Samples []float32
	Path    string
}

// IsSupportedFormat reports whether format is in the allow-list. The check is
// case-insensitive and tolerates a leading dot (file extensions).
func IsSupportedFormat(format string) bool {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	for _, f := range Formats {
		if format == f {
			return true
		}
	}
	return false
}
