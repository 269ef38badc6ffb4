package utils

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	rs "github.com/setanarut/rainbowsmoke"
)

// LatticeColor maps a normalized color to the nearest point of a lattice with resolution res.
func LatticeColor(c colorful.Color, res rs.Resolution) rs.Color {
	c = c.Clamped()
	return res.Clamp(rs.Color{
		R: latticeChannel(c.R, res.R),
		G: latticeChannel(c.G, res.G),
		B: latticeChannel(c.B, res.B),
	})
}

func latticeChannel(v float64, res int) uint16 {
	if res <= 1 {
		return 0
	}
	return uint16(math.Round(v * float64(res-1)))
}

// SeedColors extracts k palette colors from img, darkest first, and maps them onto the lattice.
// They are meant for Engine.SeedWith, so a finished image can theme the next one.
func SeedColors(img image.Image, k int, method PaletteMethod, res rs.Resolution) []rs.Color {
	palette := ExtractPalette(img, k, method)
	SortPaletteByBrightness(palette)
	out := make([]rs.Color, len(palette))
	for i, c := range palette {
		out[i] = LatticeColor(c, res)
	}
	return out
}
