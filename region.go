package rainbowsmoke

import (
	"fmt"
	"image"
)

// RegionCache partitions the canvas into a cells×cells grid and keeps one theme color per cell.
//
// A cell's theme is set lazily: either by the first averaged color computed close to the cell
// center, or by the random color picked for an isolated pixel inside the cell. Once set, the
// theme is blended into neighbor averages with Weight and reused, jittered, for isolated pixels.
type RegionCache struct {
	// Weight is how many neighbors the theme color counts for in an average.
	// 0 keeps averages untouched.
	Weight int
	// Jitter is the largest per-channel offset applied when a theme color is reused for a
	// pixel without colored neighbors.
	Jitter int

	cells    int
	cellSize image.Point
	width    int
	height   int
	colors   []Color
	set      []bool
}

// NewRegionCache builds an empty cache for a width×height canvas.
func NewRegionCache(width, height, cells int) (*RegionCache, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: canvas must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	if cells <= 0 || cells > width || cells > height {
		return nil, fmt.Errorf("%w: region grid %d does not fit a %dx%d canvas", ErrConfiguration, cells, width, height)
	}
	return &RegionCache{
		cells:    cells,
		cellSize: image.Pt((width+1)/cells, (height+1)/cells),
		width:    width,
		height:   height,
		colors:   make([]Color, cells*cells),
		set:      make([]bool, cells*cells),
	}, nil
}

// Cells is the number of grid cells along each axis.
func (rc *RegionCache) Cells() int {
	return rc.cells
}

// Reset forgets every theme color.
func (rc *RegionCache) Reset() {
	clear(rc.colors)
	clear(rc.set)
}

// cellOf returns the cell index of c and c's offset from that cell's center.
func (rc *RegionCache) cellOf(c Coord) (int, image.Point) {
	gx := clampInt(c.X*rc.cells/rc.width, 0, rc.cells-1)
	gy := clampInt(c.Y*rc.cells/rc.height, 0, rc.cells-1)
	center := image.Pt(gx*rc.cellSize.X+rc.cellSize.X/2, gy*rc.cellSize.Y+rc.cellSize.Y/2)
	return gy*rc.cells + gx, c.Sub(center)
}

// Lookup returns the theme color of the cell containing c.
func (rc *RegionCache) Lookup(c Coord) (Color, bool) {
	i, _ := rc.cellOf(c)
	return rc.colors[i], rc.set[i]
}

// learn records avg as the theme of c's cell when the cell has none and c is near its center.
func (rc *RegionCache) learn(c Coord, avg Color) {
	i, pos := rc.cellOf(c)
	if rc.set[i] {
		return
	}
	if pos.X*pos.X+pos.Y*pos.Y >= rc.cellSize.X*rc.cellSize.X/6 {
		return
	}
	rc.colors[i] = avg
	rc.set[i] = true
}

// remember records col as the theme of c's cell when the cell has none.
func (rc *RegionCache) remember(c Coord, col Color) {
	i, _ := rc.cellOf(c)
	if rc.set[i] {
		return
	}
	rc.colors[i] = col
	rc.set[i] = true
}

func (rc *RegionCache) jitter(col Color, rng Random, res Resolution) Color {
	if rc.Jitter <= 0 {
		return col
	}
	span := rc.Jitter*2 + 1
	return Color{
		R: uint16(clampInt(int(col.R)+rng.IntN(span)-rc.Jitter, 0, res.R-1)),
		G: uint16(clampInt(int(col.G)+rng.IntN(span)-rc.Jitter, 0, res.G-1)),
		B: uint16(clampInt(int(col.B)+rng.IntN(span)-rc.Jitter, 0, res.B-1)),
	}
}
