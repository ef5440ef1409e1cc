// ABOUTME: presets command
// ABOUTME: Lists equalizer presets and prints a preset's frequency response
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio/eq"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func presetsCmd() *cobra.Command {
	var points, sampleRate int

	cmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "List equalizer presets, or show one preset's response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listPresets(cmd.OutOrStdout())
			}
			return showResponse(cmd.OutOrStdout(), args[0], sampleRate, points)
		},
	}
	cmd.Flags().IntVar(&points, "points", 16, "Number of response points")
	cmd.Flags().IntVar(&sampleRate, "rate", 44100, "Sample rate for the response")
	return cmd
}

func listPresets(w io.Writer) error {
	header := lo.Map(eq.DefaultFrequencies, func(f float64, _ int) string {
		return fmt.Sprintf("%6s", formatHz(f))
	})
	fmt.Fprintf(w, "%-12s%s\n", "", strings.Join(header, ""))

	for _, name := range eq.PresetNames() {
		preset, _ := eq.LookupPreset(name)
		gains := lo.Map(preset.Gains, func(g float64, _ int) string {
			return fmt.Sprintf("%+6.0f", g)
		})
		fmt.Fprintf(w, "%-12s%s\n", name, strings.Join(gains, ""))
	}
	return nil
}

func showResponse(w io.Writer, name string, sampleRate, points int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	chain := eq.New(sampleRate)
	if err := chain.ApplyPreset(name); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s at %d Hz\n", name, sampleRate)
	for _, p := range chain.FrequencyResponse(points) {
		fmt.Fprintf(w, "  %8s  %+6.2f dB\n", formatHz(p.Frequency), p.MagnitudeDB)
	}
	return nil
}

func formatHz(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%.3gk", f/1000)
	}
	return fmt.Sprintf("%.0f", f)
}
