// ABOUTME: Parametric equalizer for stereo float blocks
// ABOUTME: Package documentation for eq
// Package eq implements a multi-band parametric equalizer built from RBJ
// peaking biquads.
//
// A Chain holds one filter per band and per channel and processes stereo
// blocks in place. Band parameters may be changed from any goroutine; new
// coefficients are published atomically and take effect on the next call to
// Process. Filter state belongs to the goroutine calling Process and Reset.
//
// Example:
//
//	chain := eq.New(44100)
//	chain.SetBand(0, 60, 6, 1)
//	if err := chain.Process(block); err != nil {
//	    // silence the block
//	}
package eq
