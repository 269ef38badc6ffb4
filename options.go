package rainbowsmoke

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// PriorityMode decides the queue priority of newly exposed pixels.
type PriorityMode uint8

const (
	// PriorityFlat gives every pixel the same priority; the Order alone shapes the front.
	PriorityFlat PriorityMode = iota
	// PriorityDistance prefers pixels closer to a seed, growing round fronts.
	PriorityDistance
)

func (p PriorityMode) String() string {
	if p == PriorityDistance {
		return "distance"
	}
	return "flat"
}

// ExposeMode decides which pixels join the queue after a pixel is set.
type ExposeMode uint8

const (
	// ExposeNeighbors queues the Blank neighbors of the set pixel, growing connected fronts.
	ExposeNeighbors ExposeMode = iota
	// ExposeRandomUnset queues one uniformly random Blank pixel anywhere on the canvas,
	// scattering isolated pixels that take region theme colors.
	ExposeRandomUnset
)

func (e ExposeMode) String() string {
	if e == ExposeRandomUnset {
		return "random"
	}
	return "neighbors"
}

// SeedColorMode decides the color given to seeds placed with Engine.Seed.
type SeedColorMode uint8

const (
	// SeedColorRandom draws a uniform lattice color for every seed.
	SeedColorRandom SeedColorMode = iota
	// SeedColorFixed uses Options.FixedColor for every seed.
	SeedColorFixed
)

func (s SeedColorMode) String() string {
	if s == SeedColorFixed {
		return "fixed"
	}
	return "random"
}

type Options struct {
	// Canvas size in pixels.
	Width  int
	Height int
	// Per-channel lattice resolution. The palette has R*G*B colors.
	// When that exceeds Width*Height the lattice is thinned with a uniform stride,
	// so a run can place every palette color. Smaller lattices end Exhausted.
	Resolution Resolution
	// Neighborhood radius used to average already placed colors.
	// 1 follows the front closely. 2-6 blur the gradient and make each step slower.
	Radius int
	// Neighbors exposed when a pixel is set. Connectivity4 gives blockier, diamond-like fronts.
	Connectivity Connectivity
	// Which pixels a set pixel exposes. ExposeRandomUnset ignores Connectivity and, with a
	// region grid, turns the canvas into theme-colored noise that slowly fills in.
	Expose ExposeMode
	// Order among pixels of equal priority.
	// FIFO grows compact blobs, LIFO long tendrils, Random a frayed smoke-like edge.
	Order Order
	// Priority of newly exposed pixels.
	Priority PriorityMode
	// Breaks equal-distance palette matches randomly instead of by channel order.
	RandomColorTies bool
	// Seed of the generator behind every random choice. Equal seeds reproduce runs.
	RandomSeed uint64
	// Color policy for Engine.Seed.
	SeedColor  SeedColorMode
	FixedColor Color
	// Theme-color cache grid size (RegionCells×RegionCells). 0 disables the cache and isolated
	// pixels get plain random colors. 4-8 gives visible patches on large canvases.
	RegionCells int
	// Weight of a cell's theme color against the neighbor average. 0 disables blending.
	RegionWeight int
	// Largest per-channel offset when a theme color is reused for an isolated pixel.
	RegionJitter int
	// Run logs a progress line every ProgressEvery steps. 0 disables progress lines.
	ProgressEvery int
	// Logger for Run. nil uses the logrus standard logger.
	Logger logrus.FieldLogger
}

func DefaultOptions() Options {
	return Options{
		Width:         256,
		Height:        256,
		Resolution:    Resolution{R: 32, G: 64, B: 32},
		Radius:        1,
		Connectivity:  Connectivity8,
		Expose:        ExposeNeighbors,
		Order:         OrderFIFO,
		Priority:      PriorityFlat,
		RandomSeed:    1,
		SeedColor:     SeedColorRandom,
		ProgressEvery: 10000,
	}
}

// OptionsFromSize sizes the lattice so it covers size.X*size.Y cells with the smallest cube.
func OptionsFromSize(size image.Point) Options {
	if size.X <= 0 || size.Y <= 0 {
		return DefaultOptions()
	}
	cells := size.X * size.Y
	r := max(1, int(math.Cbrt(float64(cells))))
	for r > 1 && (r-1)*(r-1)*(r-1) >= cells {
		r--
	}
	for r*r*r < cells {
		r++
	}
	r = min(r, 1<<16)

	opt := DefaultOptions()
	opt.Width = size.X
	opt.Height = size.Y
	opt.Resolution = Resolution{R: r, G: r, B: r}
	opt.ProgressEvery = max(1000, cells/20)
	return opt
}

// Validate reports the first unusable field, wrapped in ErrConfiguration.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", ErrConfiguration, o.Width, o.Height)
	}
	if err := o.Resolution.validate(); err != nil {
		return err
	}
	var problems []string
	if o.Radius < 0 {
		problems = append(problems, fmt.Sprintf("radius %d is negative", o.Radius))
	}
	if o.Connectivity > Connectivity4 {
		problems = append(problems, fmt.Sprintf("unknown connectivity %d", o.Connectivity))
	}
	if o.Expose > ExposeRandomUnset {
		problems = append(problems, fmt.Sprintf("unknown expose mode %d", o.Expose))
	}
	if o.Order > OrderRandom {
		problems = append(problems, fmt.Sprintf("unknown order %d", o.Order))
	}
	if o.Priority > PriorityDistance {
		problems = append(problems, fmt.Sprintf("unknown priority mode %d", o.Priority))
	}
	if o.SeedColor > SeedColorFixed {
		problems = append(problems, fmt.Sprintf("unknown seed color mode %d", o.SeedColor))
	}
	if o.SeedColor == SeedColorFixed && !o.Resolution.Contains(o.FixedColor) {
		problems = append(problems, fmt.Sprintf("fixed color %v outside the lattice", o.FixedColor))
	}
	if o.RegionCells < 0 || o.RegionCells > min(o.Width, o.Height) {
		problems = append(problems, fmt.Sprintf("region grid %d does not fit the canvas", o.RegionCells))
	}
	if o.RegionWeight < 0 || o.RegionJitter < 0 {
		problems = append(problems, "region weight and jitter must not be negative")
	}
	if o.ProgressEvery < 0 {
		problems = append(problems, "progress interval must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
