// Package rainbowsmoke grows images in which every palette color lands on exactly one pixel.
//
// An Engine starts from seed pixels and repeatedly takes a pixel from the growth front,
// averages the colors already placed around it and assigns the nearest color still unused.
package rainbowsmoke

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the lifecycle of an Engine.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Outcome is the result of one Step.
type Outcome uint8

const (
	// Progressed means one pixel received its color.
	Progressed Outcome = iota
	// Completed means the front emptied: every reachable pixel is set.
	Completed
	// Exhausted means pixels were still waiting when the palette ran out.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Progressed:
		return "progressed"
	case Completed:
		return "completed"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// frontier is the part of AssignmentQueue the engine relies on.
type frontier interface {
	Add(c Coord, priority int)
	Pop() (Coord, error)
	Len() int
}

// Engine drives the growth. It is not safe for concurrent use; readers such as renderers must
// run between Step calls.
type Engine struct {
	opts   Options
	log    logrus.FieldLogger
	rng    Random
	pixels *PixelMap
	pool   *ColorPool
	queue  frontier
	state  State
	seeds  []Coord
	steps  int
}

// New builds an engine whose random choices come from NewRandom(opts.RandomSeed).
func New(opts Options) (*Engine, error) {
	return NewWithRandom(opts, NewRandom(opts.RandomSeed))
}

// NewWithRandom builds an engine around an injected random source.
func NewWithRandom(opts Options, rng Random) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}

	pixels, err := NewPixelMap(opts.Width, opts.Height, opts.Resolution, rng)
	if err != nil {
		return nil, err
	}
	pixels.SetConnectivity(opts.Connectivity)
	if opts.RegionCells > 0 {
		rc, err := NewRegionCache(opts.Width, opts.Height, opts.RegionCells)
		if err != nil {
			return nil, err
		}
		rc.Weight = opts.RegionWeight
		rc.Jitter = opts.RegionJitter
		pixels.SetRegionCache(rc)
	}

	pool, err := NewSampledColorPool(opts.Resolution, opts.Width*opts.Height)
	if err != nil {
		return nil, err
	}
	if opts.RandomColorTies {
		pool.SetRandomTies(rng)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{
		opts:   opts,
		log:    log,
		rng:    rng,
		pixels: pixels,
		pool:   pool,
		queue:  NewAssignmentQueue(opts.Order.TieBreaker(rng)),
	}, nil
}

// Seed places a seed on every coordinate, colored according to Options.SeedColor.
// Nothing is placed when any coordinate is invalid.
func (e *Engine) Seed(coords ...Coord) error {
	if e.terminal() {
		return ErrFinished
	}
	if len(coords) == 0 {
		return fmt.Errorf("%w: no coordinates given", ErrInvalidSeed)
	}
	seen := make(map[Coord]bool, len(coords))
	for _, c := range coords {
		if err := e.checkSeed(c); err != nil {
			return err
		}
		if seen[c] {
			return fmt.Errorf("%w: %v given twice", ErrInvalidSeed, c)
		}
		seen[c] = true
	}
	if err := e.checkCapacity(len(coords)); err != nil {
		return err
	}
	// Every seed is set before any is exposed, so adjacent seeds never queue each other.
	for _, c := range coords {
		col := e.opts.FixedColor
		if e.opts.SeedColor == SeedColorRandom {
			col = e.opts.Resolution.RandomColor(e.rng)
		}
		e.place(c, col)
	}
	for _, c := range coords {
		e.expose(c)
	}
	return nil
}

// SeedWith places one seed with an externally chosen color. When that exact color is not in the
// pool, the nearest available one is used.
func (e *Engine) SeedWith(c Coord, col Color) error {
	if e.terminal() {
		return ErrFinished
	}
	if err := e.checkSeed(c); err != nil {
		return err
	}
	if !e.opts.Resolution.Contains(col) {
		return fmt.Errorf("%w: color %v outside the lattice", ErrInvalidSeed, col)
	}
	if err := e.checkCapacity(1); err != nil {
		return err
	}
	e.place(c, col)
	e.expose(c)
	return nil
}

// SeedRandom seeds n distinct blank pixels chosen at random and returns their coordinates.
func (e *Engine) SeedRandom(n int) ([]Coord, error) {
	if e.terminal() {
		return nil, ErrFinished
	}
	var blank []Coord
	for _, p := range e.pixels.pixels {
		if p.Status == Blank {
			blank = append(blank, p.Loc)
		}
	}
	if n <= 0 || n > len(blank) {
		return nil, fmt.Errorf("%w: cannot pick %d of %d blank pixels", ErrInvalidSeed, n, len(blank))
	}
	for i := range n {
		j := i + e.rng.IntN(len(blank)-i)
		blank[i], blank[j] = blank[j], blank[i]
	}
	picked := append([]Coord(nil), blank[:n]...)
	return picked, e.Seed(picked...)
}

func (e *Engine) checkSeed(c Coord) error {
	p, ok := e.pixels.Get(c)
	if !ok {
		return fmt.Errorf("%w: %v outside the %dx%d canvas", ErrInvalidSeed, c, e.opts.Width, e.opts.Height)
	}
	if p.Status != Blank {
		return fmt.Errorf("%w: %v is already %s", ErrInvalidSeed, c, p.Status)
	}
	return nil
}

func (e *Engine) checkCapacity(n int) error {
	if left := e.pool.Len(); n > left {
		return fmt.Errorf("%w: %d seeds but only %d palette colors left", ErrInvalidSeed, n, left)
	}
	return nil
}

// place colors a seed. Callers check the pool capacity first.
func (e *Engine) place(c Coord, requested Color) {
	chosen, err := e.pool.FindNearestAndRemove(requested)
	if err != nil {
		panic(fmt.Sprintf("rainbowsmoke: seeding %v: %v", c, err))
	}
	e.pixels.Assign(c, chosen)
	e.seeds = append(e.seeds, c)
	e.state = StateRunning
}

// expose queues the pixels c uncovers: its Blank neighbors, or one random Blank pixel under
// ExposeRandomUnset. They are marked pending first so that no coordinate is ever queued twice.
func (e *Engine) expose(c Coord) {
	if e.opts.Expose == ExposeRandomUnset {
		if n, ok := e.pixels.RandomBlank(e.rng); ok {
			e.pixels.MarkPending(n)
			e.queue.Add(n, e.priority(n))
		}
		return
	}
	for _, n := range e.pixels.Neighbors(c) {
		p, _ := e.pixels.Get(n)
		if p.Status != Blank {
			continue
		}
		e.pixels.MarkPending(n)
		e.queue.Add(n, e.priority(n))
	}
}

func (e *Engine) priority(c Coord) int {
	if e.opts.Priority != PriorityDistance {
		return 0
	}
	best := math.MaxInt
	for _, s := range e.seeds {
		d := c.Sub(s)
		best = min(best, d.X*d.X+d.Y*d.Y)
	}
	return -best
}

// Step assigns a color to one pixel of the front.
// Calling Step before any seed was placed is a programming error and panics.
func (e *Engine) Step() Outcome {
	switch e.state {
	case StateIdle:
		panic("rainbowsmoke: Step called before Seed")
	case StateCompleted:
		return Completed
	case StateExhausted:
		return Exhausted
	}

	c, err := e.queue.Pop()
	if errors.Is(err, ErrQueueEmpty) {
		e.state = StateCompleted
		return Completed
	}
	if p, _ := e.pixels.Get(c); p.Status != Pending {
		panic(fmt.Sprintf("rainbowsmoke: queued pixel %v is %s, want pending", c, p.Status))
	}

	preferred := e.pixels.PreferredColor(c, e.opts.Radius)
	chosen, err := e.pool.FindNearestAndRemove(preferred)
	if errors.Is(err, ErrPoolExhausted) {
		e.state = StateExhausted
		return Exhausted
	}

	e.pixels.Assign(c, chosen)
	e.expose(c)
	e.steps++
	return Progressed
}

// Run steps until a terminal outcome or until ctx is done. Cancellation is checked between
// steps, so the engine stays consistent and Run may be called again.
func (e *Engine) Run(ctx context.Context) (Outcome, error) {
	if e.state == StateIdle {
		return Progressed, ErrNotSeeded
	}
	start := time.Now()
	outcome := Progressed
	for outcome == Progressed {
		if err := ctx.Err(); err != nil {
			e.fields(start).WithError(err).Warn("growth interrupted")
			return outcome, err
		}
		outcome = e.Step()
		if every := e.opts.ProgressEvery; every > 0 && outcome == Progressed && e.steps%every == 0 {
			e.fields(start).Debug("growth progress")
		}
	}

	entry := e.fields(start).WithField("outcome", outcome.String())
	if outcome == Exhausted {
		entry.Warn("palette ran out before the front")
	} else {
		entry.Info("growth finished")
	}
	return outcome, nil
}

func (e *Engine) fields(start time.Time) logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{
		"steps":     e.steps,
		"placed":    e.pixels.SetCount(),
		"remaining": e.pool.Len(),
		"pending":   e.queue.Len(),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	})
}

func (e *Engine) terminal() bool {
	return e.state == StateCompleted || e.state == StateExhausted
}

// State is the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Steps counts the pixels colored by Step, seeds excluded.
func (e *Engine) Steps() int { return e.steps }

// Placed counts every Set pixel, seeds included.
func (e *Engine) Placed() int { return e.pixels.SetCount() }

// Remaining counts the palette colors not placed yet.
func (e *Engine) Remaining() int { return e.pool.Len() }

// Pending counts the queued pixels.
func (e *Engine) Pending() int { return e.queue.Len() }

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Seeds returns the seeded coordinates in placement order.
func (e *Engine) Seeds() []Coord { return append([]Coord(nil), e.seeds...) }

// Bounds is the canvas rectangle.
func (e *Engine) Bounds() image.Rectangle { return e.pixels.Bounds() }

// Pixel returns a copy of the pixel at c.
func (e *Engine) Pixel(c Coord) (Pixel, bool) { return e.pixels.Get(c) }

// Image renders the canvas. Pixels without a color are drawn with background.
func (e *Engine) Image(background color.Color) *image.RGBA {
	w, h := e.opts.Width, e.opts.Height
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.RGBAModel.Convert(background).(color.RGBA)
	for y := range h {
		for x := range w {
			p := &e.pixels.pixels[e.pixels.offset(x, y)]
			if p.Status != Set {
				out.SetRGBA(x, y, bg)
				continue
			}
			out.SetRGBA(x, y, p.Color.RGBA(e.opts.Resolution))
		}
	}
	return out
}
