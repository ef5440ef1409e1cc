// ABOUTME: Native OGG Vorbis backend
// ABOUTME: Decodes Vorbis streams with jfreymuth/oggvorbis and checks the real channel count
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// vorbisChunk is the number of frames read per call
const vorbisChunk = 4096

// Vorbis decodes OGG Vorbis files with jfreymuth/oggvorbis
type Vorbis struct{}

// Name returns the backend name
func (Vorbis) Name() string { return "oggvorbis" }

// Decode reads and decodes the whole file
func (b Vorbis) Decode(path string) (*audio.DecodedAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrNotFound, path, b.Name(), err)
	}
	defer f.Close()

	channels, err := vorbisChannels(f)
	if err != nil {
		return nil, newError(ErrUnsupportedFormat, path, b.Name(), err)
	}
	if channels > audio.Stereo {
		return nil, layoutError(path, b.Name(), channels)
	}
	if channels < 1 {
		return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("no channels"))
	}

	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("failed to read vorbis headers: %w", err))
	}

	interleaved := make([]float32, 0, int(r.Length())*channels)
	buf := make([]float32, vorbisChunk*channels)
	for {
		n, err := r.Read(buf)
		interleaved = append(interleaved, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("vorbis decode error: %w", err))
		}
	}

	frames, err := audio.ToStereo(interleaved, channels)
	if err != nil {
		return nil, layoutError(path, b.Name(), channels)
	}

	return audio.NewDecodedAudio(frames, r.SampleRate(), audio.Format{
		Codec:      "vorbis",
		SampleRate: r.SampleRate(),
		Channels:   channels,
		BitDepth:   32,
	})
}

// vorbisChannels reads the channel count from the identification header and
// rewinds f. Decoders downstream may fold extra channels into stereo, so the
// layout check has to happen here.
func vorbisChannels(f io.ReadSeeker) (int, error) {
	format, err := oggvorbis.GetFormat(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read vorbis header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind: %w", err)
	}
	return format.Channels, nil
}
