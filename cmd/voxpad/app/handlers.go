package app

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/voxpad/voxpad/cmd/voxpad/audio"
	"github.com/voxpad/voxpad/cmd/voxpad/capture"
	"github.com/voxpad/voxpad/cmd/voxpad/session"
)

const sessionCookie = "voxpad_session"

// Every failure kind is recovered here and surfaced as a user-visible
// message; none are fatal to the process.
const (
	kindUnsupportedFormat    = "unsupported_format"
	kindCaptureUnavailable   = "capture_unavailable"
	kindTranscriptionFailure = "transcription_failure"
	kindNoTranscript         = "no_transcript"
	kindUnsupportedLanguage  = "unsupported_language"
)

type transcribeResponse struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

type sentimentResponse struct {
	Polarity float64 `json:"polarity"`
	Category string  `json:"category"`
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// sessionState resolves the caller's session from its cookie, creating a
// fresh empty session on first contact.
func (a *App) sessionState(c *fiber.Ctx) *session.State {
	id := c.Cookies(sessionCookie)
	if id == "" {
		id = a.store.NewID()
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    id,
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}
	return a.store.Get(id)
}

func (a *App) handleIndex(c *fiber.Ctx) error {
	// Resolve the session up front so the cookie is set before the first
	// API call.
	a.sessionState(c)
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

func (a *App) handleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		// No file supplied: a no-op, the page shows no further output.
		return c.SendStatus(fiber.StatusNoContent)
	}

	src := capture.NewUploadSource(file, int64(a.cfg.MaxUploadSizeMB)*1024*1024)
	return a.runTranscribe(c, src)
}

func (a *App) handleRecord(c *fiber.Ctx) error {
	if a.mic == nil {
		return a.sendError(c, capture.ErrUnavailable)
	}
	return a.runTranscribe(c, a.mic)
}

func (a *App) runTranscribe(c *fiber.Ctx, src capture.Source) error {
	state := a.sessionState(c)

	res, err := a.orch.Transcribe(c.UserContext(), state, src)
	if err != nil {
		return a.sendError(c, err)
	}

	return c.JSON(transcribeResponse{
		Text:       res.Text,
		Language:   res.Language,
		PreviewURL: "/audio/preview",
	})
}

func (a *App) handleSentiment(c *fiber.Ctx) error {
	state := a.sessionState(c)

	res, err := a.orch.CheckSentiment(state)
	if err != nil {
		return a.sendError(c, err)
	}

	return c.JSON(sentimentResponse{
		Polarity: res.Polarity,
		Category: string(res.Category),
	})
}

func (a *App) handlePreview(c *fiber.Ctx) error {
	path := a.sessionState(c).PreviewPath()
	if path == "" {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(path)
}

func (a *App) sendError(c *fiber.Ctx, err error) error {
	var langErr *UnsupportedLanguageError

	kind := kindTranscriptionFailure
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, capture.ErrNoFile):
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, audio.ErrUnsupportedFormat):
		kind = kindUnsupportedFormat
		status = fiber.StatusBadRequest
	case errors.Is(err, capture.ErrUnavailable):
		kind = kindCaptureUnavailable
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, ErrNoTranscript):
		kind = kindNoTranscript
		status = fiber.StatusBadRequest
	case errors.As(err, &langErr):
		kind = kindUnsupportedLanguage
		status = fiber.StatusBadRequest
	}

	slog.Warn("request failed",
		slog.String("kind", kind),
		slog.String("err", err.Error()))

	return c.Status(status).JSON(errorResponse{
		Kind:  kind,
		Error: err.Error(),
	})
}
