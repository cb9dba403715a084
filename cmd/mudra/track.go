package main

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Draw hand landmarks and an FPS readout",
	Long:  `Draws the 21 landmarks and their connections for every detected hand, with the current frame rate in the top-left corner.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runLoop(cmd.Context(), app.ModeTrack, cfg)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
}
