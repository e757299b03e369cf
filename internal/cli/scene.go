package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/paxon/tweenguide"
)

// sceneFile is the JSON scene format: pre-authored strokes per frame plus
// an optional script of drawing actions to replay against the watcher.
type sceneFile struct {
	Width      int                       `json:"width"`
	Height     int                       `json:"height"`
	Scale      float64                   `json:"scale"`
	StartFrame int                       `json:"start_frame"`
	Frames     map[string][][][3]float64 `json:"frames"`
	Script     []sceneStep               `json:"script"`
}

// sceneStep is one scripted action. Actions: "goto" (change frame),
// "stroke" (finish a whole stroke), "append" (grow the last stroke by one
// point), "remove" (undo the last stroke), "wait" (let the clock run).
type sceneStep struct {
	Action string       `json:"action"`
	Frame  int          `json:"frame"`
	Points [][3]float64 `json:"points"`
	Point  *[3]float64  `json:"point"`
	Millis int          `json:"ms"`
}

func loadScene(path string) (*sceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	var scene sceneFile
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}

	if scene.Width <= 0 {
		scene.Width = 480
	}
	if scene.Height <= 0 {
		scene.Height = 360
	}
	if scene.Scale <= 0 {
		scene.Scale = 40
	}
	return &scene, nil
}

// sketchpad builds the in-memory document from the scene's frame data.
func (s *sceneFile) sketchpad() (*tweenguide.Sketchpad, error) {
	pad := tweenguide.NewSketchpad()
	for key, strokes := range s.Frames {
		frame, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("bad frame key %q: %w", key, err)
		}
		for _, stroke := range strokes {
			points := make([]tweenguide.Vec3, len(stroke))
			for i, p := range stroke {
				points[i] = tweenguide.V3(p[0], p[1], p[2])
			}
			pad.AddStroke(frame, points...)
		}
	}
	pad.SetFrame(s.StartFrame)
	return pad, nil
}

func vec3Of(p [3]float64) tweenguide.Vec3 {
	return tweenguide.V3(p[0], p[1], p[2])
}
