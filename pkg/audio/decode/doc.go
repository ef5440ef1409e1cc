// ABOUTME: Audio file decoder package for local playback
// ABOUTME: Provides the Decoder interface and a cascading multi-backend implementation
// Package decode turns local audio files into fully decoded stereo tracks.
//
// Supports: MP3, WAV, FLAC, OGG Vorbis
//
// Every file is first handed to a native backend chosen by extension (go-mp3,
// mewkiz/flac, go-audio/wav, jfreymuth/oggvorbis). When the native backend fails
// for any reason other than an unsupported channel layout, the beep decoders are
// tried as a fallback.
//
// All backends produce interleaved stereo float32 at the source sample rate.
// Mono sources are duplicated to both channels and sources with more than two
// channels are rejected with ErrUnsupportedLayout.
//
// Example:
//
//	track, err := decode.File("/music/song.flac")
//	if errors.Is(err, decode.ErrNotFound) {
//	    ...
//	}
package decode
