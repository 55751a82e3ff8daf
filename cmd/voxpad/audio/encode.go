package audio

import (
	"encoding/binary"

	"github.com/voxpad/voxpad/cmd/voxpad/transcribe"
)

const wavHeaderLen = 44

// EncodeWAV wraps canonical samples (16kHz, mono) in a 16-bit PCM wav
// container.
func EncodeWAV(samples []float32) []byte {
	const bitDepth = 16

	wav := make([]byte, wavHeaderLen+len(samples)*2)
	pcm := wav[wavHeaderLen:]

	copy(wav[0:], "RIFF")
	binary.LittleEndian.PutUint32(wav[4:], uint32(len(wav)-8))
	copy(wav[8:], "WAVE")
	copy(wav[12:], "fmt ")
	binary.LittleEndian.PutUint32(wav[16:], 16)
	binary.LittleEndian.PutUint16(wav[20:], 1)
	binary.LittleEndian.PutUint16(wav[22:], transcribe.Channels)
	binary.LittleEndian.PutUint32(wav[24:], transcribe.SampleRate)
	binary.LittleEndian.PutUint32(wav[28:], (transcribe.SampleRate*bitDepth*transcribe.Channels)/8)
	binary.LittleEndian.PutUint16(wav[32:], (bitDepth*transcribe.Channels)/8)
	binary.LittleEndian.PutUint16(wav[34:], bitDepth)
	copy(wav[36:], "data")
	binary.LittleEndian.PutUint32(wav[40:], uint32(len(samples)*2))

	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(s*32767.0)))
	}

	return wav
}
