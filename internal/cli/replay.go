package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/paxon/tweenguide"
)

var (
	replayScene string
	replayOut   string
	replayTitle string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scripted scene through a guide session",
	Long: `Replay runs the scene's script against a live session with a
synthetic clock: each action mutates the document, the watcher polls, and
the overlay is captured to a PNG frame. The frames are collected into an
HTML flipbook report, and the studio index is regenerated.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayScene, "scene", "", "path to the scene JSON file")
	replayCmd.Flags().StringVar(&replayOut, "out", "flipbooks", "output directory for reports")
	replayCmd.Flags().StringVar(&replayTitle, "title", "replay", "title for the session report")
	replayCmd.MarkFlagRequired("scene")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(replayScene)
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

	config := tweenguide.DefaultSessionConfig()
	session := tweenguide.NewSession(strokes, scene.StartFrame, count, config)

	camera := tweenguide.NewCamera(scene.Width, scene.Height, scene.Scale)
	table := tweenguide.NewLightTable(scene.Width, scene.Height, camera, tweenguide.DefaultOverlayConfig())
	watcher := tweenguide.NewWatcher(pad, session, func() {
		table.DrawSession(session)
	})

	started := time.Now()
	reportDir := filepath.Join(replayOut, replayTitle, started.Format("20060102_150405"))
	framesDir := filepath.Join(reportDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("failed to create frames directory: %w", err)
	}

	// Synthetic clock: advance by whole poll intervals so debounce and
	// stability behave as they would under the real ticker.
	now := started
	poll := func(d time.Duration) tweenguide.Outcome {
		ticks := int(d / config.PollInterval)
		if ticks < 1 {
			ticks = 1
		}
		var last tweenguide.Outcome
		for i := 0; i < ticks; i++ {
			now = now.Add(config.PollInterval)
			last = watcher.Poll(now)
		}
		return last
	}

	var frames []tweenguide.FlipbookFrame
	capture := func(step int, label string, outcome tweenguide.Outcome) error {
		path := filepath.Join(framesDir, fmt.Sprintf("step_%02d.png", step))
		if err := table.CaptureFrame(path); err != nil {
			return fmt.Errorf("failed to capture frame %d: %w", step, err)
		}
		dataURL, err := tweenguide.ImageDataURL(path)
		if err != nil {
			return err
		}
		st := session.Status()
		status := fmt.Sprintf("state: %s\nframe: %d\nguide: %d of %d\nstrokes seen: %d",
			outcome.State, st.MonitoredFrame, st.Index+1, st.Total, st.LastCount)
		frames = append(frames, tweenguide.FlipbookFrame{
			Label:      label,
			Step:       step,
			Timestamp:  now,
			DataURL:    dataURL,
			StatusHTML: tweenguide.StatusViewHTML(status),
		})
		return nil
	}

	for i, step := range scene.Script {
		var label string
		var outcome tweenguide.Outcome

		switch step.Action {
		case "goto":
			pad.SetFrame(step.Frame)
			label = fmt.Sprintf("goto frame %d", step.Frame)
			outcome = poll(config.PollInterval)
		case "stroke":
			points := make([]tweenguide.Vec3, len(step.Points))
			for j, p := range step.Points {
				points[j] = vec3Of(p)
			}
			pad.AddStroke(step.Frame, points...)
			label = fmt.Sprintf("stroke on frame %d (%d points)", step.Frame, len(points))
			outcome = poll(config.PollInterval)
		case "append":
			if step.Point != nil {
				pad.AppendPoint(step.Frame, vec3Of(*step.Point))
			}
			label = fmt.Sprintf("append point on frame %d", step.Frame)
			outcome = poll(config.PollInterval)
		case "remove":
			pad.RemoveLastStroke(step.Frame)
			label = fmt.Sprintf("remove last stroke on frame %d", step.Frame)
			outcome = poll(config.PollInterval)
		case "wait":
			label = fmt.Sprintf("wait %dms", step.Millis)
			outcome = poll(time.Duration(step.Millis) * time.Millisecond)
		default:
			return fmt.Errorf("unknown script action %q (step %d)", step.Action, i+1)
		}

		if err := capture(i+1, label, outcome); err != nil {
			return err
		}
	}

	// Let any pending commit settle before the final capture.
	outcome := poll(config.Debounce + config.PollInterval)
	if err := capture(len(scene.Script)+1, "settle", outcome); err != nil {
		return err
	}

	var smudges []string
	for _, s := range watcher.Handler().Smears() {
		smudges = append(smudges, s.Error())
	}
	for _, s := range watcher.Handler().Blots() {
		smudges = append(smudges, s.Error())
	}

	report := tweenguide.SessionReport{
		SessionID: session.ID,
		Title:     replayTitle,
		Timestamp: started.Format(time.RFC3339),
		Duration:  now.Sub(started),
		Healthy:   watcher.Healthy(),
		Frames:    frames,
		Smudges:   smudges,
	}

	generator := tweenguide.NewFlipbookGenerator(reportDir)
	if err := generator.Generate(report); err != nil {
		return fmt.Errorf("failed to generate flipbook: %w", err)
	}
	if err := tweenguide.GenerateStudioIndex(replayOut); err != nil {
		return fmt.Errorf("failed to generate studio index: %w", err)
	}

	final := session.Status()
	fmt.Fprintf(cmd.OutOrStdout(), "flipbook written: %s (%d frames, guide %d/%d)\n",
		filepath.Join(reportDir, "index.html"), len(frames), final.Index+1, final.Total)
	return nil
}
