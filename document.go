package tweenguide

// Stroke is a hand-drawn stroke on an authored frame: an ordered sequence
// of points in the drawable's local space.
type Stroke struct {
	Points []Vec3
}

// IsEmpty reports whether the stroke carries no points.
func (s Stroke) IsEmpty() bool {
	return len(s.Points) == 0
}

// Document is the host-side introspection boundary.
//
// The hosting application exposes its current state through this interface;
// the library never mutates the document. Implementations are expected to be
// cheap to query: the watcher calls CurrentFrame and the count methods on
// every poll.
//
// Example implementation sketch for a host binding:
//
//	func (h *HostDoc) CurrentFrame() int { return h.scene.Frame }
//	func (h *HostDoc) ActiveDrawable() Drawable {
//		if obj := h.scene.Active(); obj.Kind == host.KindSketch {
//			return wrapDrawable(obj)
//		}
//		return nil
//	}
type Document interface {
	// CurrentFrame returns the frame number the host is currently showing.
	CurrentFrame() int
	// ActiveDrawable returns the active drawable surface of the supported
	// type, or nil when no such object is selected.
	ActiveDrawable() Drawable
}

// Drawable is a single drawable surface (the active layer of the selected
// object). All frame numbers refer to authored frames on this surface.
//
// Every introspection method returns an explicit error instead of raising:
// callers distinguish "no data" (zero values, nil error) from "the document
// could not be read" (non-nil error).
type Drawable interface {
	// WorldTransform returns the drawable's current local-to-world transform.
	WorldTransform() Affine
	// Frames returns the authored frame numbers, in no particular order.
	Frames() ([]int, error)
	// Strokes returns the strokes authored on the given frame. A frame
	// number with no authored frame yields an empty slice, not an error.
	Strokes(frame int) ([]Stroke, error)
	// StrokeCount returns the number of strokes on the given frame.
	StrokeCount(frame int) (int, error)
	// LastStrokePointCount returns the point count of the last stroke on
	// the given frame, or 0 when the frame has no strokes.
	LastStrokePointCount(frame int) (int, error)
}
