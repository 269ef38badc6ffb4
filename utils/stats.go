package utils

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GradientStats summarizes the RGB distance between horizontally and vertically adjacent
// opaque pixels. Smooth smoke has a low mean and a low maximum.
type GradientStats struct {
	Mean    float64
	StdDev  float64
	Max     float64
	Samples int
}

// Gradient measures how abruptly colors change across img. Pairs touching a fully
// transparent pixel are skipped.
func Gradient(img image.Image) GradientStats {
	b := img.Bounds()
	var steps []float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			if x+1 < b.Max.X {
				if r, ok := colorful.MakeColor(img.At(x+1, y)); ok {
					steps = append(steps, c.DistanceRgb(r))
				}
			}
			if y+1 < b.Max.Y {
				if d, ok := colorful.MakeColor(img.At(x, y+1)); ok {
					steps = append(steps, c.DistanceRgb(d))
				}
			}
		}
	}
	if len(steps) == 0 {
		return GradientStats{}
	}
	mean, std := stat.MeanStdDev(steps, nil)
	if len(steps) == 1 {
		std = 0
	}
	return GradientStats{Mean: mean, StdDev: std, Max: floats.Max(steps), Samples: len(steps)}
}
