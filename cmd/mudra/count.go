package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count raised fingers and show the matching picture",
	Long: `Classifies each finger of the first detected hand as raised or folded and
copies the picture named after the count (0 to 5) into the top-left corner.
The thumb rule assumes a right hand facing the camera.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := applyCountFlags(cmd.Flags(), &cfg); err != nil {
			return err
		}

		return runLoop(cmd.Context(), app.ModeCount, cfg)
	},
}

func init() {
	addCountFlags(countCmd.Flags())
	rootCmd.AddCommand(countCmd)
}

func addCountFlags(fs *pflag.FlagSet) {
	fs.String("assets", "", "Directory holding the pictures 0 to 5")
	fs.String("asset-ext", "", "Picture file extension; empty tries .jpg, .jpeg and .png")
	fs.Float64("confidence", 0, "Minimum hand detection confidence")
}

// applyCountFlags overrides the count settings with any flags that were set.
func applyCountFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("assets") {
		cfg.Assets.Dir, _ = flags.GetString("assets")
	}
	if flags.Changed("asset-ext") {
		cfg.Assets.Ext, _ = flags.GetString("asset-ext")
	}
	if flags.Changed("confidence") {
		cfg.Count.MinConfidence, _ = flags.GetFloat64("confidence")
	}
	return cfg.Validate()
}
