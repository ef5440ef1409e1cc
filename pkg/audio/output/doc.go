// ABOUTME: Audio output package for callback-driven playback
// ABOUTME: Package documentation for output
// Package output adapts OS audio APIs to a single pull model.
//
// A Driver opens a Stream for a sample rate and block size and calls the
// supplied Callback from its own goroutine whenever the device needs more
// audio. The callback fills a stereo float32 block; the driver converts it to
// the device format.
//
// Drivers:
//   - Malgo: miniaudio via malgo (default)
//   - Oto: ebitengine/oto, pulls through an io.Reader
//   - PortAudio: requires building with -tags portaudio
//   - Null: discards audio, paced in real time
//   - Manual: pulls only when asked, for tests and offline rendering
//
// Example:
//
//	drv := output.NewMalgo()
//	stream, err := drv.Open(output.Config{SampleRate: 44100}, func(out [][2]float32, info output.TimeInfo, flags output.StatusFlags) {
//	    // fill out
//	})
//	err = stream.Start()
//	defer stream.Close()
package output
