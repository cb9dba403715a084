package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Webcam hand tracking and finger counting",
	Long: `mudra reads frames from a webcam, finds hand landmarks with a MediaPipe
service and either draws them (track) or counts raised fingers (count).
Press the exit key (default q) in the preview window to quit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", config.DefaultPath, "Path to a YAML or JSON config file")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.Int("camera", 0, "Camera device index")
}

// loadConfig reads the config file and applies the persistent flags on top.
// The default path may be absent; an explicit --config must exist.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return configFromFlags(cmd.Flags())
}

func configFromFlags(flags *pflag.FlagSet) (config.Config, error) {

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, flags.Changed("config"))
	if err != nil {
		return cfg, err
	}

	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("camera") {
		cfg.Camera.Device, _ = flags.GetInt("camera")
	}

	return cfg, cfg.Validate()
}
