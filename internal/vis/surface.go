package vis

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// trailOverlay is painted over the previous frame instead of clearing it,
// producing the motion-trail effect
var trailOverlay = color.NRGBA{R: 10, G: 10, B: 20, A: 38}

// Surface is the drawing target for one frame
type Surface interface {
	// Size returns the surface dimensions
	Size() (width, height int)

	// Overlay paints a translucent color over the whole surface
	Overlay(c color.NRGBA)

	// FillCircle paints a filled circle centered at (x, y)
	FillCircle(x, y, radius float64, c color.NRGBA)
}

// ImageSurface draws into an in-memory image buffer
type ImageSurface struct {
	img *image.NRGBA
}

// NewImageSurface creates a black surface of the given dimensions
func NewImageSurface(width, height int) *ImageSurface {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return &ImageSurface{img: img}
}

// Size returns the surface dimensions
func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Overlay paints a translucent color over the whole surface
func (s *ImageSurface) Overlay(c color.NRGBA) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
}

// FillCircle paints a filled circle centered at (x, y)
func (s *ImageSurface) FillCircle(x, y, radius float64, c color.NRGBA) {
	mask := &circleMask{cx: x, cy: y, r: radius}
	bounds := image.Rect(
		int(math.Floor(x-radius)), int(math.Floor(y-radius)),
		int(math.Ceil(x+radius))+1, int(math.Ceil(y+radius))+1,
	).Intersect(s.img.Bounds())
	draw.DrawMask(s.img, bounds, image.NewUniform(c), image.Point{}, mask, bounds.Min, draw.Over)
}

// Snapshot returns a copy of the current frame
func (s *ImageSurface) Snapshot() image.Image {
	return imaging.Clone(s.img)
}

// circleMask is an alpha mask covering a filled circle
type circleMask struct {
	cx, cy, r float64
}

func (m *circleMask) ColorModel() color.Model {
	return color.AlphaModel
}

func (m *circleMask) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(m.cx-m.r)), int(math.Floor(m.cy-m.r)),
		int(math.Ceil(m.cx+m.r))+1, int(math.Ceil(m.cy+m.r))+1,
	)
}

func (m *circleMask) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - m.cx
	dy := float64(y) + 0.5 - m.cy
	if dx*dx+dy*dy <= m.r*m.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// HSLA converts an HSL color (hue in degrees, saturation and lightness in
// [0,1]) with an alpha in [0,1] into NRGBA
func HSLA(hue, saturation, lightness, alpha float64) color.NRGBA {
	hue = math.Mod(math.Mod(hue, 360)+360, 360)

	c := (1 - math.Abs(2*lightness-1)) * saturation
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := lightness - c/2

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = c, x, 0
	case hue < 120:
		r, g, b = x, c, 0
	case hue < 180:
		r, g, b = 0, c, x
	case hue < 240:
		r, g, b = 0, x, c
	case hue < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: uint8(math.Round(alpha * 255)),
	}
}
