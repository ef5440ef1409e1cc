// ABOUTME: Native WAV backend
// ABOUTME: Decodes integer PCM WAV files with go-audio/wav
package decode

import (
	"fmt"
	"os"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog/log"
)

// wavFormatPCM is the RIFF format tag for integer PCM
const wavFormatPCM = 1

// WAV decodes 16/24/32-bit integer PCM WAV files with go-audio/wav. Other
// encodings (8-bit, float, extensible) are left to the fallback backend.
type WAV struct{}

// Name returns the backend name
func (WAV) Name() string { return "go-audio-wav" }

// Decode reads and decodes the whole file
func (b WAV) Decode(path string) (*audio.DecodedAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrNotFound, path, b.Name(), err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, newError(ErrUnsupportedFormat, path, b.Name(), fmt.Errorf("invalid WAV file"))
	}

	channels := int(decoder.NumChans)
	if channels > audio.Stereo {
		return nil, layoutError(path, b.Name(), channels)
	}
	if channels < 1 {
		return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("no channels"))
	}

	bitDepth := int(decoder.BitDepth)
	if decoder.WavAudioFormat != wavFormatPCM || bitDepth < 16 {
		return nil, newError(ErrUnsupportedFormat, path, b.Name(),
			fmt.Errorf("wav format %d, %d-bit", decoder.WavAudioFormat, bitDepth))
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("failed to read PCM: %w", err))
	}

	// A file cut short mid-data still plays what survived
	if want := decoder.PCMLen() / int64(channels*bitDepth/8); int64(buf.NumFrames()) < want {
		log.Warn().
			Str("component", "decode").
			Str("path", path).
			Int("frames", buf.NumFrames()).
			Int64("header_frames", want).
			Msg("WAV data shorter than its header, file looks truncated")
	}

	interleaved := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		interleaved[i] = audio.SampleFromInt(int32(s), bitDepth)
	}

	frames, err := audio.ToStereo(interleaved, channels)
	if err != nil {
		return nil, layoutError(path, b.Name(), channels)
	}

	sampleRate := int(decoder.SampleRate)
	return audio.NewDecodedAudio(frames, sampleRate, audio.Format{
		Codec:      "wav",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
	})
}
