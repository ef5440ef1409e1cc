// ABOUTME: Local playback engine
// ABOUTME: Package documentation for player
// Package player plays decoded audio files through an output driver.
//
// The Engine owns the decoded track and the playback cursor. The output
// driver pulls blocks from the engine on its own goroutine; each block is
// sliced at the cursor, run through the equalizer, the optional fade
// envelope and the volume, then clipped to [-1, 1].
//
// Control methods may be called from any goroutine. Load decodes on the
// calling goroutine while the previous track keeps playing. The end callback
// runs on its own goroutine after the last block, so it may call back into
// the engine.
//
// Example:
//
//	eng, err := player.New(player.Config{})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	eng.SetOnEnd(func() { fmt.Println("done") })
//	if err := eng.Load("song.flac"); err != nil {
//	    return err
//	}
//	err = eng.Play()
package player
