package tweenguide

import (
	"image"
	"image/color"
	"math"
)

// blendPixel composites a color over the image at (x, y) with source-over
// alpha blending, matching the host viewport's alpha blend state.
func blendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	if c.A == 0xff {
		img.SetRGBA(x, y, c)
		return
	}
	if c.A == 0 {
		return
	}

	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	inv := 255 - a
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(c.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(c.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(c.B)*a + uint32(dst.B)*inv) / 255),
		A: uint8(a + (uint32(dst.A)*inv)/255),
	})
}

// fillTriangle rasterizes a single filled triangle with half-open edge
// rules over its bounding box. Either winding is accepted.
func fillTriangle(img *image.RGBA, a, b, c Vec2, col color.RGBA) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := V2(float64(x)+0.5, float64(y)+0.5)
			d1 := edgeSide(a, b, p)
			d2 := edgeSide(b, c, p)
			d3 := edgeSide(c, a, p)

			hasNeg := d1 < 0 || d2 < 0 || d3 < 0
			hasPos := d1 > 0 || d2 > 0 || d3 > 0
			if hasNeg && hasPos {
				continue
			}
			blendPixel(img, x, y, col)
		}
	}
}

// edgeSide returns which side of the edge a-b the point p lies on.
func edgeSide(a, b, p Vec2) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

// fillTriangles rasterizes a flat triangle list (every three points form
// one triangle); a trailing partial triple is ignored.
func fillTriangles(img *image.RGBA, tris []Vec2, col color.RGBA) {
	for i := 0; i+2 < len(tris); i += 3 {
		fillTriangle(img, tris[i], tris[i+1], tris[i+2], col)
	}
}

// drawSegment draws one thick line segment as a quad.
func drawSegment(img *image.RGBA, a, b Vec2, width float64, col color.RGBA) {
	dir := b.Sub(a)
	if dir.Length() < 1e-9 {
		return
	}
	offset := dir.Normalize().Perp().Mul(width / 2)

	p0 := a.Add(offset)
	p1 := b.Add(offset)
	p2 := b.Sub(offset)
	p3 := a.Sub(offset)
	fillTriangle(img, p0, p1, p2, col)
	fillTriangle(img, p0, p2, p3, col)
}

// drawLineStrip draws a connected polyline with the given stroke width.
func drawLineStrip(img *image.RGBA, pts []Vec2, width float64, col color.RGBA) {
	for i := 0; i+1 < len(pts); i++ {
		drawSegment(img, pts[i], pts[i+1], width, col)
	}
}

// drawDot draws a small filled square centered on the point, standing in
// for the host's point primitive.
func drawDot(img *image.RGBA, p Vec2, size float64, col color.RGBA) {
	half := size / 2
	minX := int(math.Floor(p.X - half))
	maxX := int(math.Ceil(p.X + half))
	minY := int(math.Floor(p.Y - half))
	maxY := int(math.Ceil(p.Y + half))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			blendPixel(img, x, y, col)
		}
	}
}
