package tweenguide

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countColored returns how many canvas pixels differ from the background.
func countColored(lt *LightTable) int {
	img := lt.Image()
	bg := lt.Config().Background
	bounds := img.Bounds()
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				n++
			}
		}
	}
	return n
}

func testTable(t *testing.T) *LightTable {
	t.Helper()
	return NewLightTable(160, 120, NewCamera(160, 120, 30), DefaultOverlayConfig())
}

// TestOverlayConfig_Clamping tests the property ranges: out-of-range values
// clamp, zero values fall back to the defaults.
func TestOverlayConfig_Clamping(t *testing.T) {
	config := OverlayConfig{
		MarkerSize:     200,
		ArrowDensity:   1000,
		ArrowSize:      0.5,
		ArrowMarginPct: 90,
	}.normalized()

	assert.Equal(t, 48, config.MarkerSize)
	assert.Equal(t, 200, config.ArrowDensity)
	assert.Equal(t, 2.0, config.ArrowSize)
	assert.Equal(t, 40, config.ArrowMarginPct)

	def := OverlayConfig{}.normalized()
	assert.Equal(t, 4, def.MarkerSize, "zero marker size clamps up to the minimum")
	assert.Equal(t, DefaultOverlayConfig().ArrowDensity, def.ArrowDensity)
	assert.Equal(t, DefaultOverlayConfig().PathColor, def.PathColor)
}

// TestLightTable_DrawGuide tests that a simple stroke puts ink on the
// canvas: path, markers, arrows.
func TestLightTable_DrawGuide(t *testing.T) {
	lt := testTable(t)

	lt.DrawGuide(GuideStroke{Points: []Vec3{
		V3(-1, 0, 0), V3(-0.5, 0.5, 0), V3(0, 0.6, 0), V3(0.5, 0.5, 0), V3(1, 0, 0),
	}})

	assert.Greater(t, countColored(lt), 50, "stroke must leave visible ink")
}

// TestLightTable_SinglePointStroke tests the degenerate stroke: only the
// start marker is drawn, nothing else.
func TestLightTable_SinglePointStroke(t *testing.T) {
	config := DefaultOverlayConfig()
	config.MarkerSize = 8
	lt := NewLightTable(160, 120, NewCamera(160, 120, 30), config)

	lt.DrawGuide(GuideStroke{Points: []Vec3{V3(0, 0, 0)}})

	n := countColored(lt)
	assert.Greater(t, n, 0, "start marker must be drawn")
	assert.Less(t, n, 200, "a single point draws a marker, not a path")

	// All ink carries the start color.
	img := lt.Image()
	start := lt.Config().StartColor
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := img.RGBAAt(x, y)
			if px != lt.Config().Background {
				require.Equal(t, start, px)
			}
		}
	}
}

// TestLightTable_EmptyGuide tests that an empty or unprojectable stroke
// leaves the canvas blank.
func TestLightTable_EmptyGuide(t *testing.T) {
	lt := testTable(t)

	lt.DrawGuide(GuideStroke{})
	assert.Equal(t, 0, countColored(lt))

	// Behind the near plane with clipping enabled: nothing projects.
	camera := NewCamera(160, 120, 30)
	camera.ClipNear = true
	clipped := NewLightTable(160, 120, camera, DefaultOverlayConfig())
	clipped.DrawGuide(GuideStroke{Points: []Vec3{V3(0, 0, -1), V3(1, 0, -1)}})
	assert.Equal(t, 0, countColored(clipped))
}

// TestLightTable_DrawSession tests session-driven drawing: the cursor's
// guide is rendered and a nil session clears the canvas.
func TestLightTable_DrawSession(t *testing.T) {
	lt := testTable(t)

	session := NewSession([]GuideStroke{
		{Points: []Vec3{V3(-1, -1, 0), V3(1, 1, 0)}},
		{Points: []Vec3{V3(-1, 1, 0), V3(1, -1, 0)}},
	}, 3, 0, DefaultSessionConfig())

	lt.DrawSession(session)
	assert.Greater(t, countColored(lt), 0)

	lt.DrawSession(nil)
	assert.Equal(t, 0, countColored(lt), "nil session clears the canvas")
}

// TestLightTable_ArrowShapes tests that every arrow shape renders ink.
func TestLightTable_ArrowShapes(t *testing.T) {
	stroke := GuideStroke{Points: []Vec3{
		V3(-1.5, 0, 0), V3(-0.75, 0, 0), V3(0, 0, 0), V3(0.75, 0, 0), V3(1.5, 0, 0),
	}}

	for _, shape := range []ArrowShape{ArrowTriangle, ArrowRect, ArrowDotted, ArrowRectTriangle} {
		config := DefaultOverlayConfig()
		config.ArrowShape = shape
		lt := NewLightTable(160, 120, NewCamera(160, 120, 30), config)
		lt.DrawGuide(stroke)
		assert.Greater(t, countColored(lt), 0, "arrow shape %d must render", shape)
	}
}

// TestLightTable_ArrowsOffDrawsTicks tests the fallback when arrows are
// disabled: yellow ticks at the segment midpoints.
func TestLightTable_ArrowsOffDrawsTicks(t *testing.T) {
	config := DefaultOverlayConfig()
	config.ShowArrows = false
	lt := NewLightTable(160, 120, NewCamera(160, 120, 30), config)

	lt.DrawGuide(GuideStroke{Points: []Vec3{V3(-1, 0, 0), V3(0, 0, 0), V3(1, 0, 0)}})

	img := lt.Image()
	tick := color.RGBA{R: 255, G: 255, B: 0, A: 224}
	bounds := img.Bounds()
	found := false
	for y := bounds.Min.Y; y < bounds.Max.Y && !found; y++ {
		for x := bounds.Min.X; x < bounds.Max.X && !found; x++ {
			found = img.RGBAAt(x, y) == tick
		}
	}
	assert.True(t, found, "midpoint ticks must be drawn when arrows are off")
}

// TestLightTable_MarkerShapes tests that each marker glyph renders.
func TestLightTable_MarkerShapes(t *testing.T) {
	for _, shape := range []MarkerShape{MarkerSquare, MarkerTriangle, MarkerCircle} {
		config := DefaultOverlayConfig()
		config.MarkerShape = shape
		lt := NewLightTable(160, 120, NewCamera(160, 120, 30), config)
		lt.DrawGuide(GuideStroke{Points: []Vec3{V3(0, 0, 0)}})
		assert.Greater(t, countColored(lt), 0, "marker shape %d must render", shape)
	}
}

// TestLightTable_CaptureFrame tests the PNG capture round trip.
func TestLightTable_CaptureFrame(t *testing.T) {
	lt := testTable(t)
	session := NewSession(guides(2), 1, 0, DefaultSessionConfig())
	lt.DrawSession(session)

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, lt.CaptureFrame(path))

	tester := NewLineTester(t.TempDir(), t.TempDir())
	img, err := tester.loadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}
