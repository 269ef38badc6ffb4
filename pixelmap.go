package rainbowsmoke

import (
	"fmt"
	"image"
)

// Coord addresses a pixel of the canvas.
type Coord = image.Point

// Status is the lifecycle state of a pixel.
type Status uint8

const (
	// Blank pixels have not been reached by the growth front.
	Blank Status = iota
	// Pending pixels are queued for assignment.
	Pending
	// Set pixels hold their final color.
	Set
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Set:
		return "set"
	default:
		return "blank"
	}
}

// Pixel is one canvas cell. Color is meaningful only when Status is Set.
type Pixel struct {
	Loc    Coord
	Color  Color
	Status Status
}

// Connectivity selects which neighbors a pixel exposes when it is set.
type Connectivity uint8

const (
	// Connectivity8 uses orthogonal and diagonal neighbors.
	Connectivity8 Connectivity = iota
	// Connectivity4 uses orthogonal neighbors only.
	Connectivity4
)

func (c Connectivity) String() string {
	if c == Connectivity4 {
		return "4"
	}
	return "8"
}

var (
	offsets8 = []image.Point{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
	offsets4 = []image.Point{
		{0, -1}, {-1, 0}, {1, 0}, {0, 1},
	}
)

// PixelMap owns the width×height grid of pixels and derives preferred colors from it.
type PixelMap struct {
	width, height int
	pixels        []Pixel // row-major, len = width*height
	res           Resolution
	rng           Random
	connectivity  Connectivity
	region        *RegionCache
	set           int

	// blank lists the Blank coordinates in no particular order. blankAt maps a pixel offset to
	// its position in blank, or -1 once the pixel left Blank.
	blank   []Coord
	blankAt []int
}

// NewPixelMap allocates a blank canvas. res bounds the random fallback colors and rng feeds them.
func NewPixelMap(width, height int, res Resolution, rng Random) (*PixelMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: canvas must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	if err := res.validate(); err != nil {
		return nil, err
	}
	m := &PixelMap{
		width:  width,
		height: height,
		pixels:  make([]Pixel, width*height),
		res:     res,
		rng:     rng,
		blank:   make([]Coord, 0, width*height),
		blankAt: make([]int, width*height),
	}
	m.Reset()
	return m, nil
}

// Reset returns every pixel to Blank and clears the region cache.
func (m *PixelMap) Reset() {
	m.blank = m.blank[:0]
	for y := range m.height {
		for x := range m.width {
			i := m.offset(x, y)
			m.pixels[i] = Pixel{Loc: image.Pt(x, y)}
			m.blankAt[i] = len(m.blank)
			m.blank = append(m.blank, image.Pt(x, y))
		}
	}
	m.set = 0
	if m.region != nil {
		m.region.Reset()
	}
}

// SetConnectivity changes the neighbor pattern returned by Neighbors.
func (m *PixelMap) SetConnectivity(c Connectivity) {
	m.connectivity = c
}

// SetRegionCache attaches a region cache. A nil cache selects plain random fallback colors.
func (m *PixelMap) SetRegionCache(rc *RegionCache) {
	m.region = rc
}

// RegionCache returns the attached cache, or nil.
func (m *PixelMap) RegionCache() *RegionCache {
	return m.region
}

func (m *PixelMap) Width() int  { return m.width }
func (m *PixelMap) Height() int { return m.height }

// Bounds is the canvas rectangle.
func (m *PixelMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// SetCount is the number of Set pixels.
func (m *PixelMap) SetCount() int {
	return m.set
}

// BlankCount is the number of Blank pixels.
func (m *PixelMap) BlankCount() int {
	return len(m.blank)
}

// RandomBlank picks a uniformly random Blank pixel. ok is false when none is left.
func (m *PixelMap) RandomBlank(rng Random) (c Coord, ok bool) {
	if len(m.blank) == 0 {
		return Coord{}, false
	}
	return m.blank[rng.IntN(len(m.blank))], true
}

// unblank drops the pixel at offset i from the Blank index by moving the last entry into its slot.
func (m *PixelMap) unblank(i int) {
	at := m.blankAt[i]
	last := m.blank[len(m.blank)-1]
	m.blank[at] = last
	m.blankAt[m.offset(last.X, last.Y)] = at
	m.blank = m.blank[:len(m.blank)-1]
	m.blankAt[i] = -1
}

func (m *PixelMap) offset(x, y int) int {
	return y*m.width + x
}

func (m *PixelMap) in(c Coord) bool {
	return c.X >= 0 && c.X < m.width && c.Y >= 0 && c.Y < m.height
}

func (m *PixelMap) mustPixel(c Coord) *Pixel {
	if !m.in(c) {
		panic(fmt.Sprintf("rainbowsmoke: coordinate %v outside %dx%d canvas", c, m.width, m.height))
	}
	return &m.pixels[m.offset(c.X, c.Y)]
}

// Get returns the pixel at c. ok is false when c is outside the canvas.
func (m *PixelMap) Get(c Coord) (p Pixel, ok bool) {
	if !m.in(c) {
		return Pixel{}, false
	}
	return m.pixels[m.offset(c.X, c.Y)], true
}

// MarkPending moves a Blank pixel to Pending. Any other state is a broken contract.
func (m *PixelMap) MarkPending(c Coord) {
	p := m.mustPixel(c)
	if p.Status != Blank {
		panic(fmt.Sprintf("rainbowsmoke: pixel %v is %s, cannot become pending", c, p.Status))
	}
	m.unblank(m.offset(c.X, c.Y))
	p.Status = Pending
}

// Assign sets the final color of a Blank or Pending pixel.
func (m *PixelMap) Assign(c Coord, col Color) {
	p := m.mustPixel(c)
	if p.Status == Set {
		panic(fmt.Sprintf("rainbowsmoke: pixel %v already set to %v", c, p.Color))
	}
	if !m.res.Contains(col) {
		panic(fmt.Sprintf("rainbowsmoke: color %v outside lattice %v", col, m.res))
	}
	if p.Status == Blank {
		m.unblank(m.offset(c.X, c.Y))
	}
	p.Color = col
	p.Status = Set
	m.set++
}

// Window is the square of the given radius around c, clipped to the canvas.
func (m *PixelMap) Window(c Coord, radius int) image.Rectangle {
	// Any radius past the longer side already covers the canvas; the clamp keeps c+radius+1
	// from overflowing.
	radius = clampInt(radius, 0, max(m.width, m.height))
	r := image.Rect(c.X-radius, c.Y-radius, c.X+radius+1, c.Y+radius+1)
	return r.Intersect(m.Bounds())
}

// PreferredColor is the rounded mean color of the Set pixels within radius of c.
// Without any Set pixel nearby it falls back to the region theme color or a random color.
func (m *PixelMap) PreferredColor(c Coord, radius int) Color {
	m.mustPixel(c)
	win := m.Window(c, radius)

	var rSum, gSum, bSum, n int
	for y := win.Min.Y; y < win.Max.Y; y++ {
		row := y * m.width
		for x := win.Min.X; x < win.Max.X; x++ {
			p := &m.pixels[row+x]
			if p.Status != Set {
				continue
			}
			rSum += int(p.Color.R)
			gSum += int(p.Color.G)
			bSum += int(p.Color.B)
			n++
		}
	}
	if n == 0 {
		return m.fallbackColor(c)
	}

	if m.region != nil {
		if theme, ok := m.region.Lookup(c); ok && m.region.Weight > 0 {
			w := m.region.Weight
			rSum += int(theme.R) * w
			gSum += int(theme.G) * w
			bSum += int(theme.B) * w
			n += w
		}
	}

	// Adding half the count before dividing rounds exact halves up.
	half := n / 2
	avg := Color{
		R: uint16((rSum + half) / n),
		G: uint16((gSum + half) / n),
		B: uint16((bSum + half) / n),
	}
	if m.region != nil {
		m.region.learn(c, avg)
	}
	return avg
}

func (m *PixelMap) fallbackColor(c Coord) Color {
	if m.region != nil {
		if theme, ok := m.region.Lookup(c); ok {
			return m.region.jitter(theme, m.rng, m.res)
		}
	}
	col := m.res.RandomColor(m.rng)
	if m.region != nil {
		m.region.remember(c, col)
	}
	return col
}

// Neighbors lists the in-bounds neighbors of c in a fixed order.
func (m *PixelMap) Neighbors(c Coord) []Coord {
	offs := offsets8
	if m.connectivity == Connectivity4 {
		offs = offsets4
	}
	out := make([]Coord, 0, len(offs))
	for _, d := range offs {
		n := c.Add(d)
		if m.in(n) {
			out = append(out, n)
		}
	}
	return out
}
