package whisper

// #cgo linux LDFLAGS: -l:libwhisper.a -lm -lstdc++
// #cgo darwin LDFLAGS: -lwhisper -lstdc++ -framework Accelerate
// #include <whisper.h>
// #include <stdlib.h>
import "C"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

type Config struct {
	// The path to the GGML model file to use.
	ModelFile string
	// The number of system threads to use to perform the transcription.
	NumThreads int
	// Language to use (defaults to autodetection).
	Language string
}

func (c Config) IsValid() error {
	if c == (Config{}) {
		return fmt.Errorf("invalid empty config")
	}

	if c.ModelFile == "" {
		return fmt.Errorf("invalid ModelFile: should not be empty")
	}

	if _, err := os.Stat(c.ModelFile); err != nil {
		return fmt.Errorf("invalid ModelFile: failed to stat model file: %w", err)
	}

	if numCPU := runtime.NumCPU(); c.NumThreads == 0 || c.NumThreads > numCPU {
		return fmt.Errorf("invalid NumThreads: should be in the range [1, %d]", numCPU)
	}

	return nil
}

// Context wraps a loaded whisper.cpp model. The model is loaded once at
// construction and reused for the lifetime of the process; the underlying C
// context is not reentrant so calls are serialized through an internal mutex.
type Context struct {
	cfg     Config
	mut     sync.Mutex
	ctx     *C.struct_whisper_context
	cparams C.struct_whisper_context_params
	params  C.struct_whisper_full_params
}

func NewContext(cfg Config) (*Context, error) {
	var c Context

	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	c.cfg = cfg

	slog.Debug("creating transcription context", slog.Any("cfg", cfg))

	path := C.CString(cfg.ModelFile)
	defer C.free(unsafe.Pointer(path))

	c.cparams = C.whisper_context_default_params()
	c.ctx = C.whisper_init_from_file_with_params(path, c.cparams)
	if c.ctx == nil {
		return nil, fmt.Errorf("failed to load model file")
	}

	c.params = C.whisper_full_default_params(C.WHISPER_SAMPLING_GREEDY)
	c.params.n_threads = C.int(c.cfg.NumThreads)
	if c.cfg.Language == "" {
		c.cfg.Language = "auto"
	}
	c.params.language = C.CString(c.cfg.Language)
	c.params.print_progress = C.bool(false)

	return &c, nil
}

func (c *Context) Destroy() error {
	c.mut.Lock()
	defer c.mut.Unlock()

	if c.ctx == nil {
		return fmt.Errorf("context is not initialized")
	}
	C.whisper_free(c.ctx)
	C.free(unsafe.Pointer(c.params.language))
	c.ctx = nil
	return nil
}

// Transcribe recognizes a whole utterance and reports the language detected by
// the model, or "unknown" when detection fails.
func (c *Context) Transcribe(ctx context.Context, samples []float32) (transcribe.Result, error) {
	if len(samples) == 0 {
		return transcribe.Result{}, fmt.Errorf("samples should not be empty")
	}

	if err := ctx.Err(); err != nil {
		return transcribe.Result{}, err
	}

	c.mut.Lock()
	defer c.mut.Unlock()

	if c.ctx == nil {
		return transcribe.Result{}, fmt.Errorf("context is not initialized")
	}

	ret := C.whisper_full(c.ctx, c.params, (*C.float)(&samples[0]), C.int(len(samples)))
	if ret != 0 {
		return transcribe.Result{}, fmt.Errorf("whisper_full failed with code %d", ret)
	}

	lang := C.GoString(C.whisper_lang_str(C.whisper_full_lang_id(c.ctx)))
	if lang == "" {
		lang = transcribe.LanguageUnknown
	}

	var sb strings.Builder
	n := int(C.whisper_full_n_segments(c.ctx))
	for i := 0; i < n; i++ {
		sb.WriteString(C.GoString(C.whisper_full_get_segment_text(c.ctx, C.int(i))))
	}

	return transcribe.Result{
		Text:     strings.TrimSpace(sb.String()),
		Language: lang,
	}, nil
}
