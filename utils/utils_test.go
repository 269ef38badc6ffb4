package utils

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	rs "github.com/setanarut/rainbowsmoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoColorImage(w, h int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestLatticeColor(t *testing.T) {
	res := rs.Resolution{R: 4, G: 4, B: 3}
	assert.Equal(t, rs.Color{R: 3, G: 0, B: 1}, LatticeColor(colorful.Color{R: 1, G: 0, B: 0.5}, res))
	assert.Equal(t, rs.Color{R: 3, G: 0, B: 2}, LatticeColor(colorful.Color{R: 1.4, G: -0.2, B: 1}, res))
	assert.Equal(t, rs.Color{}, LatticeColor(colorful.Color{R: 0.9}, rs.Resolution{R: 1, G: 1, B: 1}))
}

func TestSortPaletteByBrightness(t *testing.T) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{}
	gray := colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	green := colorful.Color{G: 1}
	palette := []colorful.Color{white, green, black, gray}
	SortPaletteByBrightness(palette)
	assert.Equal(t, []colorful.Color{black, gray, green, white}, palette)
}

func TestSelectDiverse(t *testing.T) {
	cands := []WeightedColor{
		{Col: colorful.Color{R: 0.95, G: 0.05}, Weight: 9},
		{Col: colorful.Color{R: 1}, Weight: 10},
		{Col: colorful.Color{B: 1}, Weight: 1},
	}
	got := SelectDiverse(cands, 2)
	assert.Equal(t, []colorful.Color{{R: 1}, {B: 1}}, got)

	assert.Len(t, SelectDiverse(cands, 10), 3)
	assert.Nil(t, SelectDiverse(cands, 0))
	assert.Nil(t, SelectDiverse(nil, 3))
}

func TestParsePaletteMethod(t *testing.T) {
	for _, m := range []PaletteMethod{PaletteMethodDominantColor, PaletteMethodKMeans} {
		got, err := ParsePaletteMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParsePaletteMethod("median-cut")
	assert.Error(t, err)
}

func TestKMeansColorsSkipsTransparentPixels(t *testing.T) {
	img := twoColorImage(20, 10, red, color.RGBA{})
	cands, err := KMeansColors(img, 3, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.InDelta(t, 1, c.Col.R, 1e-9)
		assert.InDelta(t, 0, c.Col.B, 1e-9)
	}

	_, err = KMeansColors(image.NewRGBA(image.Rect(0, 0, 4, 4)), 3, 1000)
	assert.Error(t, err, "nothing opaque")
}

func TestPackOpaque(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i := range 5 {
		img.SetRGBA(i%3, i/3, blue)
	}
	packed := packOpaque(img)
	assert.Equal(t, image.Rect(0, 0, 3, 1), packed.Bounds())
	for x := range 3 {
		assert.Equal(t, color.RGBA(blue), color.RGBAModel.Convert(packed.At(x, 0)))
	}
}

func TestSeedColorsKMeans(t *testing.T) {
	img := twoColorImage(20, 20, red, blue)
	got := SeedColors(img, 2, PaletteMethodKMeans, rs.Resolution{R: 4, G: 4, B: 4})
	assert.Equal(t, []rs.Color{{B: 3}, {R: 3}}, got, "darkest first")
}

func TestExtractPaletteDominantColor(t *testing.T) {
	img := twoColorImage(32, 32, red, blue)
	palette := ExtractPalette(img, 2, PaletteMethodDominantColor)
	require.Len(t, palette, 2)
	for _, c := range palette {
		nearest := math.Min(c.DistanceRgb(colorful.Color{R: 1}), c.DistanceRgb(colorful.Color{B: 1}))
		assert.Less(t, nearest, 0.25, "%v is neither red nor blue", c.Hex())
	}
}

func TestGradient(t *testing.T) {
	img := twoColorImage(2, 1, color.RGBA{A: 255}, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	g := Gradient(img)
	assert.Equal(t, 1, g.Samples)
	assert.InDelta(t, math.Sqrt(3), g.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(3), g.Max, 1e-9)
	assert.Zero(t, g.StdDev)

	flat := twoColorImage(4, 4, red, red)
	g = Gradient(flat)
	assert.Equal(t, 24, g.Samples)
	assert.Zero(t, g.Mean)
	assert.Zero(t, g.Max)

	assert.Equal(t, GradientStats{}, Gradient(image.NewRGBA(image.Rect(0, 0, 3, 3))))
}

func TestGradientSkipsTransparentPairs(t *testing.T) {
	img := twoColorImage(4, 1, red, color.RGBA{})
	g := Gradient(img)
	assert.Equal(t, 1, g.Samples, "only the pair inside the opaque half counts")
	assert.Zero(t, g.Mean)
}
