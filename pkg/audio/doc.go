// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines DecodedAudio, Format and sample conversion functions
// Package audio provides fundamental audio types shared by the decoder, the
// equalizer, the output drivers and the player engine.
//
// This package defines:
//   - Format: describes the source a track was decoded from (codec, sample rate,
//     channels, bit depth)
//   - DecodedAudio: an immutable, fully decoded track as interleaved stereo float32
//
// It also provides conversions from integer PCM to normalized float samples and
// the stereo layout normalization used by every decoder backend.
//
// Example:
//
//	track, err := audio.NewDecodedAudio(frames, 44100, audio.Format{Codec: "wav"})
//	fmt.Println(track.Duration())
package audio
