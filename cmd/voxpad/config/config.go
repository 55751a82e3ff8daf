package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	// defaults
	TranscribeAPIDefault   = TranscribeAPIWhisperCPP
	HTTPAddrDefault        = ":8080"
	DataDirDefault         = "/tmp/voxpad"
	MaxUploadSizeMBDefault = 50
)

type TranscribeAPI string

const (
	TranscribeAPIWhisperCPP TranscribeAPI = "whisper.cpp"
	TranscribeAPIAzure      TranscribeAPI = "azure"
)

func (a TranscribeAPI) IsValid() bool {
	switch a {
	case TranscribeAPIWhisperCPP, TranscribeAPIAzure:
		return true
	default:
		return false
	}
}

type Config struct {
	// server config
	HTTPAddr        string
	DataDir         string
	MaxUploadSizeMB int

	// engine config
	TranscribeAPI TranscribeAPI
	ModelFile     string
	NumThreads    int

	// microphone capture config
	EnableMic    bool
	VADModelFile string

	// azure config, required when TranscribeAPI is "azure"
	AzureSpeechKey    string
	AzureSpeechRegion string
}

func (cfg Config) IsValid() error {
	if cfg == (Config{}) {
		return fmt.Errorf("config cannot be empty")
	}

	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTPAddr cannot be empty")
	}

	if cfg.DataDir == "" {
		return fmt.Errorf("DataDir cannot be empty")
	}

	if cfg.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MaxUploadSizeMB should be a positive number")
	}

	if !cfg.TranscribeAPI.IsValid() {
		return fmt.Errorf("TranscribeAPI value is not valid")
	}

	switch cfg.TranscribeAPI {
	case TranscribeAPIWhisperCPP:
		if cfg.ModelFile == "" {
			return fmt.Errorf("ModelFile cannot be empty")
		}
	case TranscribeAPIAzure:
		if cfg.AzureSpeechKey == "" {
			return fmt.Errorf("AzureSpeechKey cannot be empty")
		}
		if cfg.AzureSpeechRegion == "" {
			return fmt.Errorf("AzureSpeechRegion cannot be empty")
		}
	}

	if cfg.EnableMic && cfg.VADModelFile == "" {
		return fmt.Errorf("VADModelFile cannot be empty when microphone capture is enabled")
	}

	if numCPU := runtime.NumCPU(); cfg.NumThreads < 1 || cfg.NumThreads > numCPU {
		return fmt.Errorf("NumThreads should be in the range [1, %d]", numCPU)
	}

	return nil
}

func (cfg *Config) SetDefaults() {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = HTTPAddrDefault
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DataDirDefault
	}

	if cfg.MaxUploadSizeMB == 0 {
		cfg.MaxUploadSizeMB = MaxUploadSizeMBDefault
	}

	if cfg.TranscribeAPI == "" {
		cfg.TranscribeAPI = TranscribeAPIDefault
	}

	if cfg.NumThreads == 0 {
		cfg.NumThreads = max(1, runtime.NumCPU()/2)
	}
}

func (cfg Config) ToEnv() []string {
	if cfg == (Config{}) {
		return nil
	}

	return []string{
		fmt.Sprintf("HTTP_ADDR=%s", cfg.HTTPAddr),
		fmt.Sprintf("DATA_DIR=%s", cfg.DataDir),
		fmt.Sprintf("MAX_UPLOAD_SIZE_MB=%d", cfg.MaxUploadSizeMB),
		fmt.Sprintf("TRANSCRIBE_API=%s", cfg.TranscribeAPI),
		fmt.Sprintf("MODEL_FILE=%s", cfg.ModelFile),
		fmt.Sprintf("NUM_THREADS=%d", cfg.NumThreads),
		fmt.Sprintf("ENABLE_MIC=%t", cfg.EnableMic),
		fmt.Sprintf("VAD_MODEL_FILE=%s", cfg.VADModelFile),
		fmt.Sprintf("AZURE_SPEECH_KEY=%s", cfg.AzureSpeechKey),
		fmt.Sprintf("AZURE_SPEECH_REGION=%s", cfg.AzureSpeechRegion),
	}
}

func FromEnv() (Config, error) {
	var cfg Config
	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	cfg.DataDir = strings.TrimSuffix(os.Getenv("DATA_DIR"), "/")
	cfg.MaxUploadSizeMB, _ = strconv.Atoi(os.Getenv("MAX_UPLOAD_SIZE_MB"))
	cfg.ModelFile = os.Getenv("MODEL_FILE")
	cfg.NumThreads, _ = strconv.Atoi(os.Getenv("NUM_THREADS"))
	cfg.VADModelFile = os.Getenv("VAD_MODEL_FILE")
	cfg.AzureSpeechKey = os.Getenv("AZURE_SPEECH_KEY")
	cfg.AzureSpeechRegion = os.Getenv("AZURE_SPEECH_REGION")

	if val := os.Getenv("TRANSCRIBE_API"); val != "" {
		cfg.TranscribeAPI = TranscribeAPI(val)
	}

	// Microphone capture is on unless explicitly disabled: the host may not
	// have an input device at all (e.g. containers).
	cfg.EnableMic = true
	if val := os.Getenv("ENABLE_MIC"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse ENABLE_MIC: %w", err)
		}
		cfg.EnableMic = enabled
	}

	return cfg, nil
}
