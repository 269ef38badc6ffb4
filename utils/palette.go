package utils

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/sirupsen/logrus"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod accepts the names returned by PaletteMethod.String.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return PaletteMethodDominantColor, fmt.Errorf("unknown palette method %q", s)
}

// WeightedColor is a palette candidate and how much of the image it stands for.
type WeightedColor struct {
	Col    colorful.Color
	Weight float64
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		return cmp.Compare(luminance(a), luminance(b))
	})
}

// DominantColors weighs up to n candidate colors of img with dominantcolor.
// Fully transparent pixels, such as the unset part of a canvas rendered over
// color.Transparent, do not count.
func DominantColors(img image.Image, n int) []WeightedColor {
	if n <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(packOpaque(img), n)
	out := make([]WeightedColor, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		out = append(out, WeightedColor{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
	}
	return out
}

// KMeansColors clusters up to maxSamples opaque pixels of img into n groups and returns the
// cluster centers weighted by population, most populated first.
func KMeansColors(img image.Image, n, maxSamples int) ([]WeightedColor, error) {
	if n <= 0 {
		return nil, nil
	}
	dataset := sampleOpaque(img, maxSamples)
	if len(dataset) == 0 {
		return nil, fmt.Errorf("no opaque pixels to cluster")
	}
	cc, err := kmeans.New().Partition(dataset, min(n, len(dataset)))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return cmp.Compare(len(b.Observations), len(a.Observations))
	})

	out := make([]WeightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, WeightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return out, nil
}

// packOpaque copies the opaque pixels of img into a dense, nearly square image.
// The few pixels that do not fill the last row are dropped.
func packOpaque(img image.Image) image.Image {
	b := img.Bounds()
	opaque := make([]color.RGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if c.A == 0 {
				continue
			}
			opaque = append(opaque, c)
		}
	}
	if len(opaque) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	w := int(math.Ceil(math.Sqrt(float64(len(opaque)))))
	h := max(1, len(opaque)/w)
	if len(opaque) < w {
		w = len(opaque)
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range w * h {
		out.SetRGBA(i%w, i/w, opaque[i])
	}
	return out
}

// sampleOpaque takes an evenly strided sample of opaque pixels as normalized RGB coordinates.
func sampleOpaque(img image.Image, maxSamples int) clusters.Observations {
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	step := 1
	if maxSamples > 0 && b.Dx()*b.Dy() > maxSamples {
		step = int(math.Sqrt(float64(b.Dx()*b.Dy())/float64(maxSamples))) + 1
	}
	var out clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			col, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			out = append(out, clusters.Coordinates{col.R, col.G, col.B})
		}
	}
	return out
}

// SelectDiverse picks k candidates by farthest-point selection in Lab space, scaled by weight,
// starting from the heaviest candidate.
func SelectDiverse(cands []WeightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	maxW := 0.0
	for _, c := range cands {
		maxW = max(maxW, c.Weight)
	}
	if maxW <= 0 {
		maxW = 1
	}

	picked := make([]int, 0, k)
	used := make([]bool, len(cands))
	first := 0
	for i, c := range cands {
		if c.Weight > cands[first].Weight {
			first = i
		}
	}
	picked = append(picked, first)
	used[first] = true

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			nearest := math.MaxFloat64
			for _, j := range picked {
				nearest = min(nearest, c.Col.DistanceLab(cands[j].Col))
			}
			score := nearest * (0.55 + 0.45*math.Sqrt(max(c.Weight, 0)/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, len(picked))
	for i, j := range picked {
		out[i] = cands[j].Col
	}
	return out
}

// ExtractPalette returns k diverse colors of img. A failed kmeans run falls back to dominantcolor.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if k <= 0 {
		return nil
	}
	var cands []WeightedColor
	if method == PaletteMethodKMeans {
		var err error
		cands, err = KMeansColors(img, max(k*4, k+2), 12000)
		if err != nil || len(cands) == 0 {
			logrus.WithError(err).WithField("k", k).Warn("kmeans palette empty, falling back to dominantcolor")
			cands = nil
		}
	}
	if len(cands) == 0 {
		cands = DominantColors(img, max(24, k*8))
	}
	return SelectDiverse(cands, k)
}
