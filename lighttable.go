package tweenguide

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MarkerShape selects the glyph drawn at a guide stroke's endpoints.
type MarkerShape int

const (
	MarkerSquare MarkerShape = iota
	MarkerTriangle
	MarkerCircle
)

// ArrowShape selects the direction indicator drawn along a guide stroke.
type ArrowShape int

const (
	// ArrowTriangle is a simple triangular arrow tip.
	ArrowTriangle ArrowShape = iota
	// ArrowRect is a small rectangle.
	ArrowRect
	// ArrowDotted is a series of small rectangles.
	ArrowDotted
	// ArrowRectTriangle is a rectangle shaft with a triangular tip.
	ArrowRectTriangle
)

// OverlayConfig is the persisted configuration surface for the overlay:
// marker and arrow appearance plus the path style. Values outside the host
// property ranges clamp when the config is normalized.
type OverlayConfig struct {
	MarkerShape MarkerShape
	// MarkerSize in pixels, 4-48 (default 8).
	MarkerSize int
	StartColor color.RGBA
	EndColor   color.RGBA

	ShowArrows bool
	ArrowShape ArrowShape
	ArrowColor color.RGBA
	// ArrowDensity 1-200: higher places more arrows along the stroke.
	ArrowDensity int
	// ArrowSize in pixels, 2-64.
	ArrowSize float64
	// ArrowMarginPct 0-40: percent of the stroke's ends skipped when
	// placing arrows.
	ArrowMarginPct int

	PathColor color.RGBA
	PathWidth float64
	// Background fills the canvas before each draw.
	Background color.RGBA
}

// DefaultOverlayConfig returns the host defaults: green start marker, red
// end marker, faint blue path, yellow triangular arrows at density 12.
func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{
		MarkerShape:    MarkerSquare,
		MarkerSize:     8,
		StartColor:     color.RGBA{R: 51, G: 255, B: 51, A: 255},
		EndColor:       color.RGBA{R: 255, G: 51, B: 51, A: 255},
		ShowArrows:     true,
		ArrowShape:     ArrowTriangle,
		ArrowColor:     color.RGBA{R: 255, G: 230, B: 51, A: 255},
		ArrowDensity:   12,
		ArrowSize:      12,
		ArrowMarginPct: 12,
		PathColor:      color.RGBA{R: 71, G: 173, B: 255, A: 82},
		PathWidth:      2,
		Background:     color.RGBA{R: 24, G: 24, B: 28, A: 255},
	}
}

// normalized clamps every field to its host property range and fills
// unusable zero values from the defaults.
func (c OverlayConfig) normalized() OverlayConfig {
	def := DefaultOverlayConfig()
	c.MarkerSize = clampInt(c.MarkerSize, 4, 48)
	if c.ArrowDensity == 0 {
		c.ArrowDensity = def.ArrowDensity
	}
	c.ArrowDensity = clampInt(c.ArrowDensity, 1, 200)
	if c.ArrowSize == 0 {
		c.ArrowSize = def.ArrowSize
	}
	c.ArrowSize = math.Min(math.Max(c.ArrowSize, 2), 64)
	c.ArrowMarginPct = clampInt(c.ArrowMarginPct, 0, 40)
	if c.PathWidth <= 0 {
		c.PathWidth = def.PathWidth
	}
	if c.PathColor == (color.RGBA{}) {
		c.PathColor = def.PathColor
	}
	if c.StartColor == (color.RGBA{}) {
		c.StartColor = def.StartColor
	}
	if c.EndColor == (color.RGBA{}) {
		c.EndColor = def.EndColor
	}
	if c.ArrowColor == (color.RGBA{}) {
		c.ArrowColor = def.ArrowColor
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LightTable renders the current guide stroke into an RGBA canvas: the
// stroke path, start and end markers, and direction arrows, projected
// through a Viewport. It tolerates sessions with nothing visible - an
// unprojectable stroke draws nothing, a single-point stroke draws only
// its start marker.
type LightTable struct {
	mu       sync.Mutex
	config   OverlayConfig
	viewport Viewport
	img      *image.RGBA
	label    string
}

// NewLightTable creates a light table over a pixel region and viewport.
func NewLightTable(width, height int, viewport Viewport, config OverlayConfig) *LightTable {
	return &LightTable{
		config:   config.normalized(),
		viewport: viewport,
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Config returns the normalized overlay configuration.
func (lt *LightTable) Config() OverlayConfig {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.config
}

// SetConfig swaps the overlay configuration, clamping out-of-range values.
func (lt *LightTable) SetConfig(config OverlayConfig) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.config = config.normalized()
}

// Image returns the canvas; callers must not draw concurrently with the
// light table.
func (lt *LightTable) Image() *image.RGBA {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.img
}

// DrawSession clears the canvas and draws the session's current guide
// stroke. A nil session or empty stroke cache leaves a blank canvas.
func (lt *LightTable) DrawSession(session *GuideSession) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.clear()
	lt.label = ""
	guide, ok := session.CurrentGuide()
	if !ok {
		return
	}
	status := session.Status()
	lt.label = fmt.Sprintf("guide %d/%d  frame %d",
		status.Index+1, status.Total, status.MonitoredFrame)
	lt.drawGuide(guide)
}

// DrawGuide clears the canvas and draws a single guide stroke directly,
// without session bookkeeping.
func (lt *LightTable) DrawGuide(guide GuideStroke) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.clear()
	lt.label = ""
	lt.drawGuide(guide)
}

func (lt *LightTable) clear() {
	bg := lt.config.Background
	bounds := lt.img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			lt.img.SetRGBA(x, y, bg)
		}
	}
}

func (lt *LightTable) drawGuide(guide GuideStroke) {
	pts := make([]Vec2, 0, len(guide.Points))
	for _, w := range guide.Points {
		if p, ok := lt.viewport.Project(w); ok {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return
	}

	cfg := lt.config

	// Single-point stroke: marker only, no path or arrows.
	if len(pts) == 1 {
		lt.drawMarker(pts[0], cfg.MarkerShape, float64(cfg.MarkerSize), cfg.StartColor)
		return
	}

	drawLineStrip(lt.img, pts, cfg.PathWidth, cfg.PathColor)

	lt.drawMarker(pts[0], cfg.MarkerShape, float64(cfg.MarkerSize), cfg.StartColor)
	lt.drawMarker(pts[len(pts)-1], cfg.MarkerShape, float64(cfg.MarkerSize), cfg.EndColor)

	segCount := len(pts) - 1
	marginSteps := int(math.Ceil(float64(segCount) * float64(cfg.ArrowMarginPct) / 100.0))
	if marginSteps > segCount/2 {
		marginSteps = segCount / 2
	}
	if marginSteps < 0 {
		marginSteps = 0
	}

	step := segCount / cfg.ArrowDensity
	if step < 1 {
		step = 1
	}

	if cfg.ShowArrows {
		var tris []Vec2
		for i := marginSteps; i < segCount-marginSteps; i += step {
			a := pts[i]
			b := pts[i+1]
			seg := b.Sub(a)
			if seg.Length() < 1e-6 {
				continue
			}
			mid := a.Lerp(b, 0.5)
			tris = append(tris, arrowTris(mid, seg, cfg.ArrowShape, cfg.ArrowSize)...)
		}
		fillTriangles(lt.img, tris, cfg.ArrowColor)
		return
	}

	// Arrows off: tick the segment midpoints instead.
	tick := color.RGBA{R: 255, G: 255, B: 0, A: 224}
	for i := 0; i < segCount; i += step {
		mid := pts[i].Lerp(pts[i+1], 0.5)
		drawDot(lt.img, mid, 6, tick)
	}
}

// drawMarker draws one endpoint marker.
func (lt *LightTable) drawMarker(center Vec2, shape MarkerShape, size float64, col color.RGBA) {
	switch shape {
	case MarkerTriangle:
		h := size * 0.86
		fillTriangle(lt.img,
			V2(center.X, center.Y+h/2),
			V2(center.X-h/2, center.Y-h/2),
			V2(center.X+h/2, center.Y-h/2),
			col)
	case MarkerCircle:
		circleFanTris(lt.img, center, size/1.5, 14, col)
	default:
		half := size / 2
		a := V2(center.X-half, center.Y-half)
		b := V2(center.X+half, center.Y-half)
		c := V2(center.X+half, center.Y+half)
		d := V2(center.X-half, center.Y+half)
		fillTriangle(lt.img, a, b, c, col)
		fillTriangle(lt.img, a, c, d, col)
	}
}

// circleFanTris approximates a filled circle as a triangle fan.
func circleFanTris(img *image.RGBA, center Vec2, radius float64, segments int, col color.RGBA) {
	for i := 0; i < segments; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(segments)
		a1 := 2 * math.Pi * float64(i+1) / float64(segments)
		fillTriangle(img,
			center,
			V2(center.X+math.Cos(a0)*radius, center.Y+math.Sin(a0)*radius),
			V2(center.X+math.Cos(a1)*radius, center.Y+math.Sin(a1)*radius),
			col)
	}
}

// arrowTris builds the triangle list for one arrow at a segment midpoint.
func arrowTris(mid, seg Vec2, shape ArrowShape, size float64) []Vec2 {
	switch shape {
	case ArrowRect:
		return rectTris(mid, seg, size, 0.28)
	case ArrowDotted:
		return rectTris(mid, seg, size*0.6, 0.25)
	case ArrowRectTriangle:
		dn := seg.Normalize()
		tris := rectTris(mid.Sub(dn.Mul(size*0.25)), seg, size*0.9, 0.22)
		return append(tris, tipTris(mid.Add(dn.Mul(size*0.5)), seg, size*0.9)...)
	default:
		return tipTris(mid, seg, size)
	}
}

// tipTris builds the triangular arrow tip.
func tipTris(mid, dir Vec2, size float64) []Vec2 {
	d := dir.Normalize()
	perp := d.Perp()
	tip := mid.Add(d.Mul(size))
	bl := mid.Sub(d.Mul(size * 0.33)).Add(perp.Mul(size * 0.33))
	br := mid.Sub(d.Mul(size * 0.33)).Sub(perp.Mul(size * 0.33))
	return []Vec2{tip, bl, br}
}

// rectTris builds a rectangle aligned with the segment as two triangles.
func rectTris(mid, dir Vec2, size, widthFactor float64) []Vec2 {
	d := dir.Normalize()
	perp := d.Perp()
	halfLen := size * 0.6
	halfW := size * widthFactor

	a := mid.Sub(d.Mul(halfLen)).Add(perp.Mul(halfW))
	b := mid.Add(d.Mul(halfLen)).Add(perp.Mul(halfW))
	c := mid.Add(d.Mul(halfLen)).Sub(perp.Mul(halfW))
	e := mid.Sub(d.Mul(halfLen)).Sub(perp.Mul(halfW))
	return []Vec2{a, b, c, a, c, e}
}

// CaptureFrame writes the canvas to a PNG, stamping the session label in
// the corner for flipbook reports.
func (lt *LightTable) CaptureFrame(filename string) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if lt.label != "" {
		drawer := &font.Drawer{
			Dst:  lt.img,
			Src:  image.NewUniform(color.RGBA{R: 230, G: 230, B: 230, A: 255}),
			Face: basicfont.Face7x13,
			Dot: fixed.Point26_6{
				X: fixed.I(4),
				Y: fixed.I(lt.img.Bounds().Dy() - 6),
			},
		}
		drawer.DrawString(lt.label)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, lt.img)
}
