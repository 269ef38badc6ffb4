package rainbowsmoke

import (
	"fmt"
	"math"
	"math/bits"
)

// bucketsPerAxis bounds how many buckets each channel is split into.
const bucketsPerAxis = 16

// ColorPool holds the lattice colors that have not been placed yet.
//
// Colors are stored in coarse buckets keyed by quantized channel values. A nearest-color query
// walks Chebyshev shells of buckets outward from the target's bucket and stops once every
// unscanned bucket is provably farther than the best candidate.
type ColorPool struct {
	res     Resolution
	step    [3]int // bucket edge per channel, in lattice units
	grid    [3]int // buckets per channel
	buckets [][]Color
	count   int
	rng     Random
}

// NewColorPool fills a pool with the whole lattice.
func NewColorPool(res Resolution) (*ColorPool, error) {
	if err := res.validate(); err != nil {
		return nil, err
	}
	p := newEmptyPool(res)
	for i := range res.Size() {
		p.insert(res.At(i))
	}
	return p, nil
}

// NewSampledColorPool fills a pool with at most limit lattice colors. When the lattice is
// larger than limit, it keeps the points at linear indices floor(i*size/limit), a uniform stride
// through the lattice.
func NewSampledColorPool(res Resolution, limit int) (*ColorPool, error) {
	if err := res.validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: sample limit must be positive, got %d", ErrConfiguration, limit)
	}
	size := res.Size()
	if size <= limit {
		return NewColorPool(res)
	}
	p := newEmptyPool(res)
	for i := range limit {
		hi, lo := bits.Mul64(uint64(i), uint64(size))
		idx, _ := bits.Div64(hi, lo, uint64(limit))
		p.insert(res.At(int(idx)))
	}
	return p, nil
}

func newEmptyPool(res Resolution) *ColorPool {
	p := &ColorPool{res: res}
	for ch, n := range [3]int{res.R, res.G, res.B} {
		p.step[ch] = max(1, (n+bucketsPerAxis-1)/bucketsPerAxis)
		p.grid[ch] = (n + p.step[ch] - 1) / p.step[ch]
	}
	p.buckets = make([][]Color, p.grid[0]*p.grid[1]*p.grid[2])
	return p
}

// SetRandomTies makes equally near colors win uniformly at random instead of by channel order.
// A nil rng restores the lexicographic rule.
func (p *ColorPool) SetRandomTies(rng Random) {
	p.rng = rng
}

// Resolution is the lattice the pool was built from.
func (p *ColorPool) Resolution() Resolution {
	return p.res
}

// Len is the number of colors left.
func (p *ColorPool) Len() int {
	return p.count
}

func (p *ColorPool) bucketOf(c Color) [3]int {
	return [3]int{int(c.R) / p.step[0], int(c.G) / p.step[1], int(c.B) / p.step[2]}
}

func (p *ColorPool) bucketIndex(b [3]int) int {
	return (b[0]*p.grid[1]+b[1])*p.grid[2] + b[2]
}

func (p *ColorPool) insert(c Color) {
	i := p.bucketIndex(p.bucketOf(c))
	p.buckets[i] = append(p.buckets[i], c)
	p.count++
}

func (p *ColorPool) removeAt(bucket, pos int) Color {
	b := p.buckets[bucket]
	last := len(b) - 1
	c := b[pos]
	b[pos] = b[last]
	p.buckets[bucket] = b[:last]
	p.count--
	return c
}

// Contains reports whether c is still available.
func (p *ColorPool) Contains(c Color) bool {
	if !p.res.Contains(c) {
		return false
	}
	for _, o := range p.buckets[p.bucketIndex(p.bucketOf(c))] {
		if o == c {
			return true
		}
	}
	return false
}

// Remove takes c out of the pool. It reports false when c was not available.
func (p *ColorPool) Remove(c Color) bool {
	if !p.res.Contains(c) {
		return false
	}
	bi := p.bucketIndex(p.bucketOf(c))
	for pos, o := range p.buckets[bi] {
		if o == c {
			p.removeAt(bi, pos)
			return true
		}
	}
	return false
}

// FindNearestAndRemove removes and returns the available color closest to target.
func (p *ColorPool) FindNearestAndRemove(target Color) (Color, error) {
	if p.count == 0 {
		return Color{}, ErrPoolExhausted
	}
	target = p.res.Clamp(target)
	t := [3]int{int(target.R), int(target.G), int(target.B)}
	center := p.bucketOf(target)

	bestBucket, bestPos := -1, -1
	bestDist := math.MaxInt
	var bestColor Color
	ties := 0

	for ring := 0; ; ring++ {
		var lo, hi [3]int
		for ch := range 3 {
			lo[ch] = max(center[ch]-ring, 0)
			hi[ch] = min(center[ch]+ring, p.grid[ch]-1)
		}

		for bx := lo[0]; bx <= hi[0]; bx++ {
			for by := lo[1]; by <= hi[1]; by++ {
				for bz := lo[2]; bz <= hi[2]; bz++ {
					b := [3]int{bx, by, bz}
					if chebyshev(b, center) != ring {
						continue
					}
					bi := p.bucketIndex(b)
					if len(p.buckets[bi]) == 0 || p.boxDistanceSquared(t, b) > bestDist {
						continue
					}
					for pos, c := range p.buckets[bi] {
						d := sqDist(c, target)
						switch {
						case d < bestDist:
							bestDist, bestBucket, bestPos, bestColor = d, bi, pos, c
							ties = 1
						case d == bestDist:
							ties++
							if p.rng != nil {
								if p.rng.IntN(ties) == 0 {
									bestBucket, bestPos, bestColor = bi, pos, c
								}
							} else if c.Less(bestColor) {
								bestBucket, bestPos, bestColor = bi, pos, c
							}
						}
					}
				}
			}
		}

		outside, bounded := p.distanceToOutside(t, lo, hi)
		if !bounded {
			break
		}
		if bestBucket >= 0 && outside*outside > bestDist {
			break
		}
	}

	if bestBucket < 0 {
		panic("rainbowsmoke: color pool count out of sync with its buckets")
	}
	return p.removeAt(bestBucket, bestPos), nil
}

func chebyshev(a, b [3]int) int {
	d := 0
	for ch := range 3 {
		v := a[ch] - b[ch]
		if v < 0 {
			v = -v
		}
		d = max(d, v)
	}
	return d
}

// boxDistanceSquared is the squared distance from t to the nearest lattice point of bucket b.
func (p *ColorPool) boxDistanceSquared(t, b [3]int) int {
	d := 0
	for ch := range 3 {
		lo := b[ch] * p.step[ch]
		hi := lo + p.step[ch] - 1
		var v int
		if t[ch] < lo {
			v = lo - t[ch]
		} else if t[ch] > hi {
			v = t[ch] - hi
		}
		d += v * v
	}
	return d
}

// distanceToOutside is the smallest per-channel distance from t to a lattice value outside the
// bucket cube [lo, hi]. bounded is false when the cube already spans the whole lattice.
func (p *ColorPool) distanceToOutside(t, lo, hi [3]int) (dist int, bounded bool) {
	dist = math.MaxInt
	for ch := range 3 {
		if lo[ch] > 0 {
			dist = min(dist, t[ch]-(lo[ch]*p.step[ch]-1))
			bounded = true
		}
		if hi[ch] < p.grid[ch]-1 {
			dist = min(dist, (hi[ch]+1)*p.step[ch]-t[ch])
			bounded = true
		}
	}
	return dist, bounded
}
