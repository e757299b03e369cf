package tweenguide

// Viewport maps world-space points to screen space. Points that cannot be
// projected (behind the camera, outside the view volume) report false and
// are skipped by the overlay renderer.
type Viewport interface {
	Project(p Vec3) (Vec2, bool)
}

// Camera is an orthographic Viewport: world points are taken through a view
// transform, scaled, and centered on a pixel region. It is the projection
// used by the demo, the replay command, and the renderer tests; host
// bindings supply their own Viewport over the host's region mapping.
type Camera struct {
	// View is the world-to-camera transform.
	View Affine
	// Width and Height are the region size in pixels.
	Width, Height int
	// Scale is pixels per world unit (default 1 when zero).
	Scale float64
	// Near clips points whose camera-space depth falls below it; the zero
	// value keeps everything.
	Near float64
	// ClipNear enables the Near plane.
	ClipNear bool
}

// NewCamera creates an identity-view camera over a pixel region.
func NewCamera(width, height int, scale float64) *Camera {
	return &Camera{
		View:   IdentityAffine(),
		Width:  width,
		Height: height,
		Scale:  scale,
	}
}

// Project implements Viewport.
func (c *Camera) Project(p Vec3) (Vec2, bool) {
	v := c.View.Apply(p)
	if c.ClipNear && v.Z < c.Near {
		return Vec2{}, false
	}

	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return Vec2{
		X: float64(c.Width)/2 + v.X*scale,
		Y: float64(c.Height)/2 - v.Y*scale,
	}, true
}
