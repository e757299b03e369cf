package tweenguide

// GuideStroke is a world-space copy of a previously drawn stroke, shown as
// a faint reference while tracing the next frame. Immutable once captured;
// re-snapshots replace guide strokes wholesale, never edit them.
type GuideStroke struct {
	Points []Vec3
}

// CaptureSnapshot copies the strokes of the nearest authored frame strictly
// before the given frame into world space.
//
// The source frame is the authored frame with the greatest frame number
// below `before` that carries at least one non-empty stroke. Points are
// transformed with the drawable's transform at capture time, not at the
// source frame's time: guide strokes follow the object's current placement.
//
// Returns an empty slice with a nil error when there is no active drawable
// or no qualifying prior frame ("no data"); a non-nil error means the
// document could not be read and the result must be treated as empty.
func CaptureSnapshot(doc Document, before int) ([]GuideStroke, error) {
	drawable := doc.ActiveDrawable()
	if drawable == nil {
		return nil, nil
	}

	source, ok, err := nearestPreviousFrame(drawable, before)
	if err != nil || !ok {
		return nil, err
	}

	strokes, err := drawable.Strokes(source)
	if err != nil {
		return nil, err
	}

	world := drawable.WorldTransform()
	guides := make([]GuideStroke, 0, len(strokes))
	for _, stroke := range strokes {
		if stroke.IsEmpty() {
			continue
		}
		points := make([]Vec3, len(stroke.Points))
		for i, p := range stroke.Points {
			points[i] = world.Apply(p)
		}
		guides = append(guides, GuideStroke{Points: points})
	}
	return guides, nil
}

// nearestPreviousFrame finds the authored frame closest below `before`
// that has at least one non-empty stroke.
func nearestPreviousFrame(drawable Drawable, before int) (int, bool, error) {
	frames, err := drawable.Frames()
	if err != nil {
		return 0, false, err
	}

	nearest := 0
	found := false
	for _, frame := range frames {
		if frame >= before {
			continue
		}
		if found && frame <= nearest {
			continue
		}
		strokes, err := drawable.Strokes(frame)
		if err != nil {
			return 0, false, err
		}
		hasInk := false
		for _, stroke := range strokes {
			if !stroke.IsEmpty() {
				hasInk = true
				break
			}
		}
		if hasInk {
			nearest = frame
			found = true
		}
	}
	return nearest, found, nil
}
