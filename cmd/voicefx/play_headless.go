//go:build headless

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newPlayCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Audio playback (not available in headless builds)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return errors.New("play: built with the headless tag, no audio output")
		},
	}
}
