// ABOUTME: Fallback backend built on the beep decoders
// ABOUTME: Covers MP3, WAV, FLAC and OGG Vorbis with one streaming interface
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/gopxl/beep/v2"
	beepflac "github.com/gopxl/beep/v2/flac"
	beepmp3 "github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	beepwav "github.com/gopxl/beep/v2/wav"
)

// beepChunk is the number of frames pulled from a beep streamer per read
const beepChunk = 4096

// Beep decodes files with the gopxl/beep decoders
type Beep struct{}

// Name returns the backend name
func (Beep) Name() string { return "beep" }

// Decode reads and decodes the whole file
func (b Beep) Decode(path string) (*audio.DecodedAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrNotFound, path, b.Name(), err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		codec    string
	)

	// The mp3 and vorbis decoders take ownership of f and close it with the streamer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		codec = "mp3"
		streamer, format, err = beepmp3.Decode(f)
	case ".wav", ".wave":
		codec = "wav"
		streamer, format, err = beepwav.Decode(f)
	case ".flac":
		codec = "flac"
		streamer, format, err = beepflac.Decode(f)
	case ".ogg", ".oga":
		codec = "vorbis"
		// The beep decoder reports at most two channels for any stream
		channels, cerr := vorbisChannels(f)
		if cerr != nil {
			f.Close()
			return nil, newError(ErrUnsupportedFormat, path, b.Name(), cerr)
		}
		if channels > audio.Stereo {
			f.Close()
			return nil, layoutError(path, b.Name(), channels)
		}
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, newError(ErrUnsupportedFormat, path, b.Name(), fmt.Errorf("extension %q not supported", ext))
	}
	if err != nil {
		f.Close()
		return nil, newError(ErrUnsupportedFormat, path, b.Name(), fmt.Errorf("failed to decode %s: %w", codec, err))
	}
	defer func() {
		streamer.Close()
		f.Close()
	}()

	if format.NumChannels > audio.Stereo {
		return nil, layoutError(path, b.Name(), format.NumChannels)
	}

	// beep already presents every source as stereo
	capacity := streamer.Len()
	if capacity < 0 {
		capacity = 0
	}
	frames := make([][2]float32, 0, capacity)
	chunk := make([][2]float64, beepChunk)
	for {
		n, ok := streamer.Stream(chunk)
		for i := 0; i < n; i++ {
			frames = append(frames, [2]float32{float32(chunk[i][0]), float32(chunk[i][1])})
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("%s decode error: %w", codec, err))
	}

	sampleRate := int(format.SampleRate)
	return audio.NewDecodedAudio(frames, sampleRate, audio.Format{
		Codec:      codec,
		SampleRate: sampleRate,
		Channels:   format.NumChannels,
		BitDepth:   format.Precision * 8,
	})
}
