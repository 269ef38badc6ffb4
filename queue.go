package rainbowsmoke

import (
	"container/heap"
	"fmt"
	"strings"
)

// TieBreaker chooses which of n equal-priority entries leaves the queue next.
// Entries are indexed in insertion order, 0 being the oldest.
type TieBreaker interface {
	Pick(n int) int
}

// FIFO takes the oldest entry.
type FIFO struct{}

func (FIFO) Pick(int) int { return 0 }

// LIFO takes the newest entry.
type LIFO struct{}

func (LIFO) Pick(n int) int { return n - 1 }

// RandomTie takes a uniformly random entry.
type RandomTie struct {
	Rand Random
}

func (r RandomTie) Pick(n int) int { return r.Rand.IntN(n) }

// Order names a TieBreaker so it can be configured.
type Order uint8

const (
	OrderFIFO Order = iota
	OrderLIFO
	OrderRandom
)

func (o Order) String() string {
	switch o {
	case OrderLIFO:
		return "lifo"
	case OrderRandom:
		return "random"
	default:
		return "fifo"
	}
}

// ParseOrder accepts "fifo", "lifo" or "random", case-insensitively.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return OrderFIFO, nil
	case "lifo":
		return OrderLIFO, nil
	case "random":
		return OrderRandom, nil
	}
	return OrderFIFO, fmt.Errorf("%w: unknown order %q", ErrConfiguration, s)
}

// TieBreaker builds the strategy named by o. rng is only used by OrderRandom.
func (o Order) TieBreaker(rng Random) TieBreaker {
	switch o {
	case OrderLIFO:
		return LIFO{}
	case OrderRandom:
		return RandomTie{Rand: rng}
	default:
		return FIFO{}
	}
}

// tier holds the entries sharing one priority. Entries before head were already taken.
type tier struct {
	entries []Coord
	head    int
}

func (t *tier) len() int { return len(t.entries) - t.head }

func (t *tier) take(i int) Coord {
	n := t.len()
	switch i {
	case 0:
		c := t.entries[t.head]
		t.head++
		if t.head > 1024 && t.head*2 > len(t.entries) {
			kept := copy(t.entries, t.entries[t.head:])
			t.entries, t.head = t.entries[:kept], 0
		}
		return c
	case n - 1:
		c := t.entries[len(t.entries)-1]
		t.entries = t.entries[:len(t.entries)-1]
		return c
	}
	// Middle removal only happens for random picks, where order no longer matters.
	at := t.head + i
	c := t.entries[at]
	last := len(t.entries) - 1
	t.entries[at] = t.entries[last]
	t.entries = t.entries[:last]
	return c
}

// priorityHeap is a max-heap of the priorities that currently have entries.
type priorityHeap []int

func (h priorityHeap) Len() int           { return len(h) }
func (h priorityHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h priorityHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *priorityHeap) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}

// AssignmentQueue hands out pending coordinates, highest priority first.
// Callers must not add a coordinate that is already queued.
type AssignmentQueue struct {
	tb         TieBreaker
	tiers      map[int]*tier
	priorities priorityHeap
	size       int
}

// NewAssignmentQueue returns an empty queue. A nil tb means FIFO.
func NewAssignmentQueue(tb TieBreaker) *AssignmentQueue {
	if tb == nil {
		tb = FIFO{}
	}
	return &AssignmentQueue{
		tb:    tb,
		tiers: make(map[int]*tier),
	}
}

// Add queues c with the given priority.
func (q *AssignmentQueue) Add(c Coord, priority int) {
	t, ok := q.tiers[priority]
	if !ok {
		t = &tier{}
		q.tiers[priority] = t
		heap.Push(&q.priorities, priority)
	}
	t.entries = append(t.entries, c)
	q.size++
}

// Pop removes the next coordinate, or returns ErrQueueEmpty.
func (q *AssignmentQueue) Pop() (Coord, error) {
	if q.size == 0 {
		return Coord{}, ErrQueueEmpty
	}
	top := q.priorities[0]
	t := q.tiers[top]
	n := t.len()
	i := q.tb.Pick(n)
	if i < 0 || i >= n {
		panic(fmt.Sprintf("rainbowsmoke: tie breaker picked %d of %d entries", i, n))
	}
	c := t.take(i)
	if t.len() == 0 {
		heap.Pop(&q.priorities)
		delete(q.tiers, top)
	}
	q.size--
	return c, nil
}

// Len is the number of queued coordinates.
func (q *AssignmentQueue) Len() int {
	return q.size
}

// IsEmpty reports whether nothing is queued.
func (q *AssignmentQueue) IsEmpty() bool {
	return q.size == 0
}
