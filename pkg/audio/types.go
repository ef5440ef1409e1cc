// ABOUTME: Audio type definitions
// ABOUTME: Defines source formats and decoded stereo tracks
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// Stereo is the only channel layout the playback path carries.
	Stereo = 2
)

var (
	// ErrLayout is returned when a source has more channels than stereo.
	ErrLayout = errors.New("unsupported channel layout")
	// ErrNonFinite is returned when decoded samples contain NaN or Inf.
	ErrNonFinite = errors.New("non-finite sample")
)

// Format describes the source a track was decoded from
type Format struct {
	Codec      string
	SampleRate int
	Channels   int // channels in the source, before stereo normalization
	BitDepth   int // 0 when the codec has no fixed bit depth (mp3, vorbis)
}

// DecodedAudio is a fully decoded track held in memory as interleaved stereo
// float32 frames. It is never mutated after construction.
type DecodedAudio struct {
	ID         uuid.UUID
	Path       string
	Frames     [][2]float32
	SampleRate int
	Source     Format
}

// NewDecodedAudio validates frames and wraps them in a DecodedAudio
func NewDecodedAudio(frames [][2]float32, sampleRate int, source Format) (*DecodedAudio, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	for i := range frames {
		l, r := float64(frames[i][0]), float64(frames[i][1])
		if math.IsNaN(l) || math.IsInf(l, 0) || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("frame %d: %w", i, ErrNonFinite)
		}
	}
	return &DecodedAudio{
		ID:         uuid.New(),
		Frames:     frames,
		SampleRate: sampleRate,
		Source:     source,
	}, nil
}

// Len returns the number of frames
func (a *DecodedAudio) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Frames)
}

// Seconds returns the track length in seconds
func (a *DecodedAudio) Seconds() float64 {
	if a == nil || a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Frames)) / float64(a.SampleRate)
}

// Duration returns the track length as a time.Duration
func (a *DecodedAudio) Duration() time.Duration {
	return time.Duration(a.Seconds() * float64(time.Second))
}

// ToStereo converts interleaved samples with the given channel count into
// stereo frames. Mono is duplicated to both channels.
func ToStereo(interleaved []float32, channels int) ([][2]float32, error) {
	switch channels {
	case 1:
		frames := make([][2]float32, len(interleaved))
		for i, s := range interleaved {
			frames[i] = [2]float32{s, s}
		}
		return frames, nil
	case 2:
		frames := make([][2]float32, len(interleaved)/2)
		for i := range frames {
			frames[i] = [2]float32{interleaved[i*2], interleaved[i*2+1]}
		}
		return frames, nil
	default:
		return nil, fmt.Errorf("%d channels: %w", channels, ErrLayout)
	}
}

// SampleFromInt16 converts an int16 sample to a float in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleFromInt converts a signed integer sample of the given bit depth to a
// float in [-1, 1)
func SampleFromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float64(uint64(1) << uint(bitDepth-1))
	return float32(float64(sample) / scale)
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// Clip limits a sample to [-1, 1]
func Clip(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
