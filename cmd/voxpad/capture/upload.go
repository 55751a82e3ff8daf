package capture

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/voxpad/voxpad/cmd/voxpad/audio"
)

// UploadSource wraps a single user supplied multipart file. The declared
// extension is validated against the format allow-list at this boundary.
type UploadSource struct {
	file    *multipart.FileHeader
	maxSize int64
}

func NewUploadSource(file *multipart.FileHeader, maxSize int64) *UploadSource {
	return &UploadSource{
		file:    file,
		maxSize: maxSize,
	}
}

func (s *UploadSource) Capture(_ context.Context) (audio.Blob, error) {
	if s.file == nil {
		return audio.Blob{}, ErrNoFile
	}

	ext := filepath.Ext(s.file.Filename)
	if !audio.IsSupportedFormat(ext) {
		return audio.Blob{}, fmt.Errorf("%w: %q", audio.ErrUnsupportedFormat, ext)
	}

	if s.maxSize > 0 && s.file.Size > s.maxSize {
		return audio.Blob{}, fmt.Errorf("file size %d exceeds the maximum of %d bytes", s.file.Size, s.maxSize)
	}

	f, err := s.file.Open()
	if err != nil {
		return audio.Blob{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	if len(data) == 0 {
		return audio.Blob{}, ErrNoFile
	}

	return audio.Blob{
		Data:   data,
		Format: strings.ToLower(strings.TrimPrefix(ext, ".")),
	}, nil
}
