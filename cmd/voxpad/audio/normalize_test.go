package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"

	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

// makeWAV encodes a sine tone and returns the raw wav bytes.
func makeWAV(t *testing.T, sampleRate, channels int, dur float64) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	n := int(float64(sampleRate) * dur)
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, n*channels),
	}
	for i := 0; i < n; i++ {
		v := int(math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)) * 16000)
		for ch := 0; ch < channels; ch++ {
			buf.Data[i*channels+ch] = v
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestNormalize(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		_, err := Normalize(Blob{Data: []byte("data"), Format: "ogg"}, t.TempDir())
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("empty format", func(t *testing.T) {
		_, err := Normalize(Blob{Data: []byte("data")}, t.TempDir())
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed wav", func(t *testing.T) {
		_, err := Normalize(Blob{Data: []byte("not a wav file"), Format: "wav"}, t.TempDir())
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed mp3", func(t *testing.T) {
		_, err := Normalize(Blob{Data: make([]byte, 512), Format: "mp3"}, t.TempDir())
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("mono 16kHz wav passes through", func(t *testing.T) {
		dir := t.TempDir()
		data := makeWAV(t, transcribe.SampleRate, 1, 1.0)

		c, err := Normalize(Blob{Data: data, Format: "wav"}, dir)
		require.NoError(t, err)
		require.Len(t, c.Samples, transcribe.SampleRate)
		require.FileExists(t, c.Path)
	})

	t.Run("stereo 44.1kHz wav is downmixed and resampled", func(t *testing.T) {
		dir := t.TempDir()
		data := makeWAV(t, 44100, 2, 1.0)

		c, err := Normalize(Blob{Data: data, Format: "wav"}, dir)
		require.NoError(t, err)
		// 1s of audio should stay 1s long at the canonical rate.
		require.InDelta(t, transcribe.SampleRate, len(c.Samples), float64(transcribe.SampleRate)/100)

		// The canonical copy must itself decode as 16kHz mono.
		f, err := os.Open(c.Path)
		require.NoError(t, err)
		defer f.Close()
		dec := wav.NewDecoder(f)
		require.True(t, dec.IsValidFile())
		dec.ReadInfo()
		require.Equal(t, uint32(transcribe.SampleRate), dec.SampleRate)
		require.Equal(t, uint16(transcribe.Channels), dec.NumChans)
	})

	t.Run("uppercase format and dotted extension", func(t *testing.T) {
		dir := t.TempDir()
		data := makeWAV(t, transcribe.SampleRate, 1, 0.5)

		c, err := Normalize(Blob{Data: data, Format: ".WAV"}, dir)
		require.NoError(t, err)
		require.NotEmpty(t, c.Samples)
	})

	t.Run("unique working files", func(t *testing.T) {
		dir := t.TempDir()
		data := makeWAV(t, transcribe.SampleRate, 1, 0.5)

		c1, err := Normalize(Blob{Data: data, Format: "wav"}, dir)
		require.NoError(t, err)
		c2, err := Normalize(Blob{Data: data, Format: "wav"}, dir)
		require.NoError(t, err)
		require.NotEqual(t, c1.Path, c2.Path)
	})
}

func TestDownmixResample(t *testing.T) {
	t.Run("stereo downmix", func(t *testing.T) {
		out := downmixResample([]float32{1, 0, 0.5, 0.5, -1, 1}, 2, 16000, 16000)
		require.Equal(t, []float32{0.5, 0.5, 0}, out)
	})

	t.Run("upsample doubles length", func(t *testing.T) {
		out := downmixResample(make([]float32, 8000), 1, 8000, 16000)
		require.Len(t, out, 16000)
	})

	t.Run("downsample halves length", func(t *testing.T) {
		out := downmixResample(make([]float32, 32000), 1, 32000, 16000)
		require.Len(t, out, 16000)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, downmixResample(nil, 1, 44100, 16000))
	})
}

func TestIsSupportedFormat(t *testing.T) {
	tcs := []struct {
		format    string
		supported bool
	}{
		{"wav", true},
		{"mp3", true},
		{".wav", true},
		{"WAV", true},
		{"ogg", false},
		{".flac", false},
		{"", false},
	}

	for _, tc := range tcs {
		t.Run(tc.format, func(t *testing.T) {
			require.Equal(t, tc.supported, IsSupportedFormat(tc.format))
		})
	}
}
