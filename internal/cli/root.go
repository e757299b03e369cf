package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "tweenguide",
	Short: "Guided tweening sessions over scripted drawing scenes",
	Long: `Tweenguide watches a drawing document while the artist traces
inbetweens, advancing a guide index stroke by stroke. This tool replays
scripted scenes through a session, renders the light-table overlay to
PNG frames, and collects them into a flipbook report.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("tweenguide version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
