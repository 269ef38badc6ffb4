package rainbowsmoke

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionIndexRoundTrip(t *testing.T) {
	res := Resolution{R: 3, G: 4, B: 5}
	require.Equal(t, 60, res.Size())

	assert.Equal(t, Color{0, 0, 1}, res.At(1), "B varies fastest")
	assert.Equal(t, Color{0, 1, 0}, res.At(5))
	assert.Equal(t, Color{1, 0, 0}, res.At(20))
	for i := range res.Size() {
		assert.Equal(t, i, res.Index(res.At(i)))
	}
}

func TestResolutionValidate(t *testing.T) {
	require.NoError(t, Resolution{1, 1, 1}.validate())
	require.NoError(t, Resolution{1 << 16, 1, 1}.validate())
	assert.ErrorIs(t, Resolution{0, 4, 4}.validate(), ErrConfiguration)
	assert.ErrorIs(t, Resolution{4, -1, 4}.validate(), ErrConfiguration)
	assert.ErrorIs(t, Resolution{4, 4, 1<<16 + 1}.validate(), ErrConfiguration)
}

func TestResolutionContainsAndClamp(t *testing.T) {
	res := Resolution{R: 4, G: 4, B: 2}
	assert.True(t, res.Contains(Color{3, 3, 1}))
	assert.False(t, res.Contains(Color{3, 3, 2}))
	assert.Equal(t, Color{3, 2, 1}, res.Clamp(Color{9, 2, 7}))
}

func TestColorLess(t *testing.T) {
	assert.True(t, Color{0, 5, 5}.Less(Color{1, 0, 0}))
	assert.True(t, Color{1, 0, 5}.Less(Color{1, 1, 0}))
	assert.True(t, Color{1, 1, 0}.Less(Color{1, 1, 1}))
	assert.False(t, Color{1, 1, 1}.Less(Color{1, 1, 1}))
}

func TestColorRGBA(t *testing.T) {
	res := Resolution{R: 2, G: 3, B: 1}
	assert.Equal(t, color.RGBA{A: 255}, Color{}.RGBA(res))
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, Color{1, 1, 0}.RGBA(res))
	assert.Equal(t, color.RGBA{R: 255, G: 255, A: 255}, Color{1, 2, 0}.RGBA(res))
}

func TestRandomColorStaysInLattice(t *testing.T) {
	res := Resolution{R: 3, G: 7, B: 2}
	rng := NewRandom(42)
	for range 500 {
		require.True(t, res.Contains(res.RandomColor(rng)))
	}
}

func TestNewRandomIsDeterministic(t *testing.T) {
	a, b := NewRandom(7), NewRandom(7)
	for range 20 {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}
