// Package capture produces raw audio blobs from user actions, either from an
// uploaded file or from the host microphone.
package capture

import (
	"context"
	"errors"

	"github.com/voxpad/voxpad/cmd/voxpad/audio"
)

var (
	// ErrNoFile is returned by the upload source when no file was supplied.
	// The operation is a no-op for the caller.
	ErrNoFile = errors.New("no audio file supplied")
	// ErrUnavailable is returned when the capture device or engine cannot be
	// used (e.g. no microphone).
	ErrUnavailable = errors.New("capture unavailable")
)

type Source interface {
	// Capture blocks until one complete audio blob has been produced.
	Capture(ctx context.Context) (audio.Blob, error)
}
