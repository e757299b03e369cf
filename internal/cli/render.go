package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paxon/tweenguide"
)

var (
	renderScene string
	renderOut   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the light-table overlay for a scene to a PNG",
	Long: `Render captures the guide snapshot for the scene's start frame and
draws the overlay once: guide path, start and end markers, and direction
arrows, exactly as a session would show them.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderScene, "scene", "", "path to the scene JSON file")
	renderCmd.Flags().StringVar(&renderOut, "out", "overlay.png", "output PNG path")
	renderCmd.MarkFlagRequired("scene")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(renderScene)
	if err != nil {
		return err
	}
	pad, err := scene.sketchpad()
	if err != nil {
		return err
	}

	strokes, err := tweenguide.CaptureSnapshot(pad, scene.StartFrame)
	if err != nil {
		return fmt.Errorf("could not read strokes from the scene: %w", err)
	}
	if len(strokes) == 0 {
		return fmt.Errorf("no strokes found in a frame before %d", scene.StartFrame)
	}

	count, err := pad.StrokeCount(scene.StartFrame)
	if err != nil {
		return err
	}

	session := tweenguide.NewSession(strokes, scene.StartFrame, count, tweenguide.DefaultSessionConfig())

	camera := tweenguide.NewCamera(scene.Width, scene.Height, scene.Scale)
	table := tweenguide.NewLightTable(scene.Width, scene.Height, camera, tweenguide.DefaultOverlayConfig())
	table.DrawSession(session)

	if err := table.CaptureFrame(renderOut); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d guides to %s\n", len(strokes), renderOut)
	return nil
}
