// ABOUTME: Native MP3 backend
// ABOUTME: Decodes MP3 files to stereo float32 with go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 decodes MP3 files with go-mp3
type MP3 struct{}

// Name returns the backend name
func (MP3) Name() string { return "go-mp3" }

// Decode reads and decodes the whole file
func (b MP3) Decode(path string) (*audio.DecodedAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrNotFound, path, b.Name(), err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, newError(ErrUnsupportedFormat, path, b.Name(), fmt.Errorf("failed to create mp3 decoder: %w", err))
	}

	// go-mp3 always outputs 16-bit little-endian stereo
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("mp3 decode error: %w", err))
	}

	frames := make([][2]float32, len(pcm)/4)
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		frames[i] = [2]float32{audio.SampleFromInt16(l), audio.SampleFromInt16(r)}
	}

	return audio.NewDecodedAudio(frames, decoder.SampleRate(), audio.Format{
		Codec:      "mp3",
		SampleRate: decoder.SampleRate(),
		Channels:   audio.Stereo,
		BitDepth:   16,
	})
}
