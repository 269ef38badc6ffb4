package rainbowsmoke

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a point of the color lattice. Each channel is an index in [0, resolution).
type Color struct {
	R, G, B uint16
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Less orders colors lexicographically by R, then G, then B.
func (c Color) Less(o Color) bool {
	if c.R != o.R {
		return c.R < o.R
	}
	if c.G != o.G {
		return c.G < o.G
	}
	return c.B < o.B
}

// Colorful maps the lattice point to normalized RGB, 0 and res-1 being the channel extremes.
func (c Color) Colorful(res Resolution) colorful.Color {
	return colorful.Color{
		R: channelUnit(c.R, res.R),
		G: channelUnit(c.G, res.G),
		B: channelUnit(c.B, res.B),
	}
}

// RGBA converts the lattice point into an opaque 8-bit display color.
func (c Color) RGBA(res Resolution) color.RGBA {
	r, g, b := c.Colorful(res).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func channelUnit(v uint16, res int) float64 {
	if res <= 1 {
		return 0
	}
	return float64(v) / float64(res-1)
}

// sqDist is the squared Euclidean distance between two lattice points.
func sqDist(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Resolution is the number of values each channel can take.
type Resolution struct {
	R, G, B int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%dx%d", r.R, r.G, r.B)
}

// Size is the number of lattice points.
func (r Resolution) Size() int {
	return r.R * r.G * r.B
}

// Contains reports whether every channel of c is inside the lattice.
func (r Resolution) Contains(c Color) bool {
	return int(c.R) < r.R && int(c.G) < r.G && int(c.B) < r.B
}

func (r Resolution) validate() error {
	if r.R <= 0 || r.G <= 0 || r.B <= 0 {
		return fmt.Errorf("%w: channel resolutions must be positive, got %d,%d,%d", ErrConfiguration, r.R, r.G, r.B)
	}
	if r.R > 1<<16 || r.G > 1<<16 || r.B > 1<<16 {
		return fmt.Errorf("%w: channel resolution above %d", ErrConfiguration, 1<<16)
	}
	return nil
}

// Clamp moves every channel of c into the lattice.
func (r Resolution) Clamp(c Color) Color {
	return Color{
		R: uint16(clampInt(int(c.R), 0, r.R-1)),
		G: uint16(clampInt(int(c.G), 0, r.G-1)),
		B: uint16(clampInt(int(c.B), 0, r.B-1)),
	}
}

// At returns the lattice point with linear index i, B varying fastest.
func (r Resolution) At(i int) Color {
	b := i % r.B
	i /= r.B
	g := i % r.G
	return Color{R: uint16(i / r.G), G: uint16(g), B: uint16(b)}
}

// Index is the inverse of At.
func (r Resolution) Index(c Color) int {
	return (int(c.R)*r.G+int(c.G))*r.B + int(c.B)
}

// RandomColor draws a uniform lattice point.
func (r Resolution) RandomColor(rng Random) Color {
	return Color{
		R: uint16(rng.IntN(r.R)),
		G: uint16(rng.IntN(r.G)),
		B: uint16(rng.IntN(r.B)),
	}
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
