// ABOUTME: Entry point for the Resonate local player
// ABOUTME: Builds the cobra command tree and runs it
package main

import (
	"fmt"
	"os"

	"github.com/Resonate-Protocol/resonate-local/internal/version"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	logFile string
	verbose bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "resonate-local: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "resonate-local",
		Short:         "Play local audio files with a ten-band equalizer",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "resonate-local.log", "Log file path (empty to disable)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		playCmd(opts),
		infoCmd(opts),
		presetsCmd(),
		toneCmd(),
	)
	return root
}
