package tweenguide

import "sync"

// Sketchpad is an in-memory Document used by the tests, the demo, and the
// replay command: a scriptable stand-in for a real host binding. Frames,
// strokes and the transform are mutated directly while a watcher polls it.
type Sketchpad struct {
	mu        sync.Mutex
	current   int
	frames    map[int][]Stroke
	transform Affine
	active    bool
	readErr   error
}

// NewSketchpad creates an empty sketchpad with an active drawable on
// frame 0 and an identity transform.
func NewSketchpad() *Sketchpad {
	return &Sketchpad{
		frames:    make(map[int][]Stroke),
		transform: IdentityAffine(),
		active:    true,
	}
}

// CurrentFrame implements Document.
func (p *Sketchpad) CurrentFrame() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// ActiveDrawable implements Document; returns nil after SetActive(false).
func (p *Sketchpad) ActiveDrawable() Drawable {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return nil
	}
	return p
}

// SetActive scripts whether a supported drawable is selected.
func (p *Sketchpad) SetActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = active
}

// SetFrame moves the sketchpad to another frame.
func (p *Sketchpad) SetFrame(frame int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = frame
}

// SetTransform replaces the drawable's local-to-world transform.
func (p *Sketchpad) SetTransform(m Affine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transform = m
}

// SetReadError scripts an introspection failure: while set, every read
// method returns it. Clear with SetReadError(nil).
func (p *Sketchpad) SetReadError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}

// WorldTransform implements Drawable.
func (p *Sketchpad) WorldTransform() Affine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transform
}

// Frames implements Drawable.
func (p *Sketchpad) Frames() ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	frames := make([]int, 0, len(p.frames))
	for frame := range p.frames {
		frames = append(frames, frame)
	}
	return frames, nil
}

// Strokes implements Drawable, returning a deep copy.
func (p *Sketchpad) Strokes(frame int) ([]Stroke, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	strokes := make([]Stroke, len(p.frames[frame]))
	for i, s := range p.frames[frame] {
		points := make([]Vec3, len(s.Points))
		copy(points, s.Points)
		strokes[i] = Stroke{Points: points}
	}
	return strokes, nil
}

// StrokeCount implements Drawable.
func (p *Sketchpad) StrokeCount(frame int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	return len(p.frames[frame]), nil
}

// LastStrokePointCount implements Drawable.
func (p *Sketchpad) LastStrokePointCount(frame int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	strokes := p.frames[frame]
	if len(strokes) == 0 {
		return 0, nil
	}
	return len(strokes[len(strokes)-1].Points), nil
}

// AddStroke authors a new stroke on a frame.
func (p *Sketchpad) AddStroke(frame int, points ...Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := make([]Vec3, len(points))
	copy(copied, points)
	p.frames[frame] = append(p.frames[frame], Stroke{Points: copied})
}

// AppendPoint grows the last stroke on a frame, simulating a stroke still
// being drawn. A frame with no strokes gains a one-point stroke.
func (p *Sketchpad) AppendPoint(frame int, point Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	strokes := p.frames[frame]
	if len(strokes) == 0 {
		p.frames[frame] = []Stroke{{Points: []Vec3{point}}}
		return
	}
	last := &strokes[len(strokes)-1]
	last.Points = append(last.Points, point)
}

// RemoveLastStroke undoes the most recent stroke on a frame.
func (p *Sketchpad) RemoveLastStroke(frame int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	strokes := p.frames[frame]
	if len(strokes) == 0 {
		return
	}
	p.frames[frame] = strokes[:len(strokes)-1]
}
