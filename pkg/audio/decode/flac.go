// ABOUTME: Native FLAC backend
// ABOUTME: Decodes FLAC files frame by frame with mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC decodes FLAC files with mewkiz/flac
type FLAC struct{}

// Name returns the backend name
func (FLAC) Name() string { return "mewkiz-flac" }

// Decode reads and decodes the whole file
func (b FLAC) Decode(path string) (*audio.DecodedAudio, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, newError(ErrUnsupportedFormat, path, b.Name(), fmt.Errorf("failed to open FLAC: %w", err))
	}
	defer stream.Close()

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	if channels > audio.Stereo {
		return nil, layoutError(path, b.Name(), channels)
	}

	frames := make([][2]float32, 0, int(info.NSamples))
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, newError(ErrCorruptStream, path, b.Name(), fmt.Errorf("frame %d: %w", len(frames), err))
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			l := audio.SampleFromInt(frame.Subframes[0].Samples[i], bitDepth)
			r := l
			if channels == audio.Stereo {
				r = audio.SampleFromInt(frame.Subframes[1].Samples[i], bitDepth)
			}
			frames = append(frames, [2]float32{l, r})
		}
	}

	return audio.NewDecodedAudio(frames, sampleRate, audio.Format{
		Codec:      "flac",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
	})
}
