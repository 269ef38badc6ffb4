package rainbowsmoke

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRandom struct {
	mock.Mock
}

func (m *mockRandom) IntN(n int) int {
	return m.Called(n).Int(0)
}

func drain(t *testing.T, q *AssignmentQueue) []Coord {
	t.Helper()
	var out []Coord
	for !q.IsEmpty() {
		c, err := q.Pop()
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestQueueFIFO(t *testing.T) {
	q := NewAssignmentQueue(FIFO{})
	for x := range 5 {
		q.Add(image.Pt(x, 0), 0)
	}
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0}}, drain(t, q))
}

func TestQueueLIFO(t *testing.T) {
	q := NewAssignmentQueue(LIFO{})
	for x := range 4 {
		q.Add(image.Pt(x, 0), 0)
	}
	assert.Equal(t, []Coord{{X: 3, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}, drain(t, q))
}

func TestQueueNilTieBreakerIsFIFO(t *testing.T) {
	q := NewAssignmentQueue(nil)
	q.Add(image.Pt(1, 1), 0)
	q.Add(image.Pt(2, 2), 0)
	c, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1, 1), c)
}

func TestQueueRandomUsesPick(t *testing.T) {
	rng := new(mockRandom)
	rng.On("IntN", 3).Return(1).Once()
	rng.On("IntN", 2).Return(1).Once()
	rng.On("IntN", 1).Return(0).Once()

	q := NewAssignmentQueue(RandomTie{Rand: rng})
	q.Add(image.Pt(0, 0), 0)
	q.Add(image.Pt(1, 0), 0)
	q.Add(image.Pt(2, 0), 0)

	// Taking the middle entry moves the newest one into its slot.
	assert.Equal(t, []Coord{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 0}}, drain(t, q))
	rng.AssertExpectations(t)
}

func TestQueueRandomDrainsEverything(t *testing.T) {
	q := NewAssignmentQueue(OrderRandom.TieBreaker(NewRandom(9)))
	want := map[Coord]bool{}
	for y := range 10 {
		for x := range 10 {
			q.Add(image.Pt(x, y), 0)
			want[image.Pt(x, y)] = true
		}
	}
	got := drain(t, q)
	require.Len(t, got, 100)
	for _, c := range got {
		assert.True(t, want[c], "%v popped twice or never added", c)
		delete(want, c)
	}
}

func TestQueueHigherPriorityFirst(t *testing.T) {
	q := NewAssignmentQueue(FIFO{})
	q.Add(image.Pt(0, 0), -4)
	q.Add(image.Pt(1, 0), 0)
	q.Add(image.Pt(2, 0), -1)
	q.Add(image.Pt(3, 0), 0)
	q.Add(image.Pt(4, 0), -4)

	assert.Equal(t, []Coord{{X: 1, Y: 0}, {X: 3, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 0}, {X: 4, Y: 0}}, drain(t, q))
}

func TestQueueInterleavedAddAndPop(t *testing.T) {
	q := NewAssignmentQueue(FIFO{})
	q.Add(image.Pt(0, 0), 0)
	q.Add(image.Pt(1, 0), 0)
	c, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(0, 0), c)

	q.Add(image.Pt(2, 0), 1)
	q.Add(image.Pt(3, 0), 0)
	assert.Equal(t, []Coord{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 3, Y: 0}}, drain(t, q))
}

func TestQueueCompactsLongTiers(t *testing.T) {
	q := NewAssignmentQueue(FIFO{})
	next := 0
	for round := range 5 {
		for range 3000 {
			q.Add(image.Pt(next, round), 0)
			next++
		}
		for range 2500 {
			_, err := q.Pop()
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 2500, q.Len())
	c, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 12500, c.X, "FIFO order survives compaction")
}

func TestQueuePopEmpty(t *testing.T) {
	q := NewAssignmentQueue(FIFO{})
	assert.True(t, q.IsEmpty())
	_, err := q.Pop()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	q.Add(image.Pt(0, 0), 0)
	_, err = q.Pop()
	require.NoError(t, err)
	_, err = q.Pop()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

type badPick struct{}

func (badPick) Pick(n int) int { return n }

func TestQueuePanicsOnBadPick(t *testing.T) {
	q := NewAssignmentQueue(badPick{})
	q.Add(image.Pt(0, 0), 0)
	assert.Panics(t, func() { _, _ = q.Pop() })
}

func TestParseOrder(t *testing.T) {
	for _, o := range []Order{OrderFIFO, OrderLIFO, OrderRandom} {
		got, err := ParseOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	got, err := ParseOrder(" LIFO ")
	require.NoError(t, err)
	assert.Equal(t, OrderLIFO, got)

	_, err = ParseOrder("stack")
	assert.ErrorIs(t, err, ErrConfiguration)
}
