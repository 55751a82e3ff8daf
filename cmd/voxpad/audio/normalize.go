package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/hajimehoshi/go-mp3"

	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

// Normalize decodes a blob into canonical samples and writes a canonical wav
// copy under dir, using a per-request unique filename so overlapping requests
// cannot clobber each other's working file. Callers own the returned file and
// should remove it once done with it.
func Normalize(blob Blob, dir string) (Canonical, error) {
	var samples []float32
	var err error

	switch strings.ToLower(strings.TrimPrefix(blob.Format, ".")) {
	case "wav":
		samples, err = decodeWAV(blob.Data)
	case "mp3":
		samples, err = decodeMP3(blob.Data)
	default:
		return Canonical{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, blob.Format)
	}
	if err != nil {
		return Canonical{}, fmt.Errorf("%w: failed to decode %s data: %s", ErrUnsupportedFormat, blob.Format, err.Error())
	}

	if len(samples) == 0 {
		return Canonical{}, fmt.Errorf("%w: no audio samples in %s data", ErrUnsupportedFormat, blob.Format)
	}

	path, err := writeCanonicalWAV(samples, dir)
	if err != nil {
		return Canonical{}, fmt.Errorf("failed to write canonical file: %w", err)
	}

	return Canonical{
		Samples: samples,
		Path:    path,
	}, nil
}

func decodeWAV(data []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 || buf.Format.SampleRate == 0 {
		return nil, fmt.Errorf("missing PCM format info")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := float32(int(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	return downmixResample(samples, buf.Format.NumChannels, buf.Format.SampleRate, transcribe.SampleRate), nil
}

func decodeMP3(data []byte) ([]float32, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	// go-mp3 always outputs 16-bit stereo PCM at the source sample rate.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768.0
	}

	return downmixResample(samples, 2, dec.SampleRate(), transcribe.SampleRate), nil
}

// downmixResample averages interleaved channels down to mono and linearly
// resamples the result to dstRate.
func downmixResample(samples []float32, channels, srcRate, dstRate int) []float32 {
	if channels > 1 {
		mono := make([]float32, len(samples)/channels)
		for i := range mono {
			var sum float32
			for ch := 0; ch < channels; ch++ {
				sum += samples[i*channels+ch]
			}
			mono[i] = sum / float32(channels)
		}
		samples = mono
	}

	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	out := make([]float32, int(float64(len(samples))/ratio))
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}

	return out
}

func writeCanonicalWAV(samples []float32, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("canonical-%s.wav", uuid.NewString()))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, transcribe.SampleRate, 16, transcribe.Channels, 1)
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: transcribe.Channels,
			SampleRate:  transcribe.SampleRate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write PCM data: %w", err)
	}

	if err := enc.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return path, nil
}
