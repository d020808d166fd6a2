package segmentation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangePointSet(t *testing.T) {
	t.Run("SortsAndDeduplicates", func(t *testing.T) {
		assert.Equal(t, ChangePointSet{2, 5, 9}, NewChangePointSet(9, 2, 5, 2, 9))
		assert.Equal(t, ChangePointSet{}, NewChangePointSet())
	})
	t.Run("Dense", func(t *testing.T) {
		set := ChangePointSet{2, 5}
		assert.Equal(t, []int{0, 0, 1, 1, 1, 2, 2}, set.Dense(7))
		assert.Equal(t, []int{0, 0, 0}, ChangePointSet{}.Dense(3))
		assert.Equal(t, []int{1, 1}, ChangePointSet{0}.Dense(2))
	})
	t.Run("Render", func(t *testing.T) {
		set := ChangePointSet{5}
		assert.Equal(t, []int{5}, set.Render(FormatSparse, 10))
		assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, set.Render(FormatDense, 10))

		sparse := set.Sparse()
		sparse[0] = 100
		assert.Equal(t, ChangePointSet{5}, set)
	})
	t.Run("FromDense", func(t *testing.T) {
		assert.Equal(t, ChangePointSet{2, 5}, FromDense([]int{0, 0, 1, 1, 1, 2, 2}))
		assert.Equal(t, ChangePointSet{0, 3}, FromDense([]int{1, 1, 1, 2}))
		assert.Equal(t, ChangePointSet{}, FromDense(nil))
	})
	t.Run("RoundTrip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(defaultSeed))
		for i := 0; i < 200; i++ {
			n := 1 + rng.Intn(100)
			indexes := []int{}
			for j := rng.Intn(10); j > 0; j-- {
				indexes = append(indexes, rng.Intn(n))
			}

			set := NewChangePointSet(indexes...)
			assert.Equal(t, set, FromDense(set.Dense(n)))
		}
	})
	t.Run("Segments", func(t *testing.T) {
		assert.Equal(t, []Segment{{0, 10}}, ChangePointSet{}.Segments(10))
		assert.Equal(t, []Segment{{0, 3}, {3, 7}, {7, 10}}, ChangePointSet{3, 7}.Segments(10))
		assert.Equal(t, []Segment{{0, 3}, {3, 10}}, ChangePointSet{0, 3, 10}.Segments(10))
	})
}

func TestResult(t *testing.T) {
	result := &Result{
		ChangePoints: ChangePointSet{3, 7},
		Scores:       map[int]float64{3: 0.9, 7: 0.75},
		SeriesLength: 10,
		Format:       FormatDense,
	}

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 1, 2, 2, 2}, result.Output())
	assert.Equal(t, []float64{0.9, 0.75}, result.ScoreList())
	assert.Len(t, result.Segments(), 3)
	assert.Nil(t, result.Profile())
	assert.Nil(t, result.PValueList())

	result.PValues = map[int]float64{7: 0.1, 3: 0.05}
	assert.Equal(t, []float64{0.05, 0.1}, result.PValueList())

	result.Profiles = []RegionProfile{{Start: 0, End: 10, Profile: &ScoreProfile{Scores: []float64{1, 2}}}}
	assert.Equal(t, []float64{1, 2}, result.Profile())

	result.Format = FormatSparse
	assert.Equal(t, []int{3, 7}, result.Output())
}
