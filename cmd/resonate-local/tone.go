// ABOUTME: tone command
// ABOUTME: Writes a test tone WAV file for checking outputs and the equalizer
package main

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-local/internal/tone"
	"github.com/spf13/cobra"
)

type toneOptions struct {
	frequency  float64
	seconds    float64
	amplitude  float64
	sampleRate int
	channels   int
	bitDepth   int
	square     bool
}

func toneCmd() *cobra.Command {
	opts := &toneOptions{}

	cmd := &cobra.Command{
		Use:   "tone <out.wav>",
		Short: "Write a test tone WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeTone(args[0], opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.frequency, "freq", 440, "Frequency in Hz")
	f.Float64Var(&opts.seconds, "seconds", 5, "Length in seconds")
	f.Float64Var(&opts.amplitude, "amplitude", 0.5, "Peak amplitude (0-1)")
	f.IntVar(&opts.sampleRate, "rate", 44100, "Sample rate")
	f.IntVar(&opts.channels, "channels", 2, "Channel count")
	f.IntVar(&opts.bitDepth, "bits", 16, "Bit depth (8, 16, 24, 32)")
	f.BoolVar(&opts.square, "square", false, "Square wave instead of sine")
	return cmd
}

func writeTone(path string, opts *toneOptions) error {
	if opts.frequency <= 0 || opts.sampleRate <= 0 || opts.seconds <= 0 {
		return fmt.Errorf("frequency, rate and seconds must be positive")
	}

	gen := tone.Sine
	if opts.square {
		gen = tone.Square
	}
	mono := gen(opts.frequency, opts.sampleRate, opts.seconds, opts.amplitude)
	return tone.WriteWAV(path, opts.sampleRate, opts.channels, opts.bitDepth, tone.Interleave(mono, opts.channels))
}
