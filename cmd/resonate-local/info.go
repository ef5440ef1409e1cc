// ABOUTME: info command
// ABOUTME: Decodes files and prints their format and duration
package main

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/decode"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	infoHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	infoErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func infoCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Decode files and print their format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logCloser, err := setupLogging(global, global.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logCloser.Close() }()

			return runInfo(cmd.OutOrStdout(), decode.NewDefault(), args)
		},
	}
}

// runInfo prints one block per file. It fails if any file could not be decoded.
func runInfo(w io.Writer, dec decode.Decoder, files []string) error {
	failed := 0
	for _, path := range files {
		track, err := dec.Decode(path)
		if err != nil {
			failed++
			log.Debug().Err(err).Str("path", path).Msg("Decode failed")
			fmt.Fprintf(w, "%s\n  %s\n\n", infoHeaderStyle.Render(path), infoErrorStyle.Render(err.Error()))
			continue
		}
		printTrack(w, path, track)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be decoded", failed, len(files))
	}
	return nil
}

func printTrack(w io.Writer, path string, track *audio.DecodedAudio) {
	src := track.Source
	bitDepth := "n/a"
	if src.BitDepth > 0 {
		bitDepth = fmt.Sprintf("%d-bit", src.BitDepth)
	}

	fmt.Fprintf(w, "%s\n", infoHeaderStyle.Render(path))
	fmt.Fprintf(w, "  Codec:       %s\n", src.Codec)
	fmt.Fprintf(w, "  Sample rate: %d Hz\n", track.SampleRate)
	fmt.Fprintf(w, "  Channels:    %d\n", src.Channels)
	fmt.Fprintf(w, "  Bit depth:   %s\n", bitDepth)
	fmt.Fprintf(w, "  Frames:      %d\n", track.Len())
	fmt.Fprintf(w, "  Duration:    %s\n", track.Duration().Round(1e6))
	fmt.Fprintf(w, "  ID:          %s\n\n", track.ID)
}
