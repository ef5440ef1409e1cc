// ABOUTME: Logging setup for the CLI
// ABOUTME: Routes zerolog output to the log file and, without a TUI, the console
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging configures the global logger. When console is false logs go to
// the file only, since the TUI owns the terminal.
func setupLogging(opts *globalOptions, console bool) (io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}
