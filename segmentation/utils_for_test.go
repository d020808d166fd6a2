package segmentation

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const defaultSeed = 12345678

type seriesFixture struct {
	Series []float64 `json:"series"`
}

// loadFixture reads testdata/<name>.json, where name is the last part
// of the test name.
func loadFixture(testName string, fixture interface{}) error {
	parts := strings.Split(testName, "/")
	testName = parts[len(parts)-1]

	data, err := os.ReadFile(fmt.Sprintf("testdata/%s.json", testName))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(json.Unmarshal(data, fixture))
}

func stepSeries(lengths []int, levels []float64) []float64 {
	out := []float64{}
	for i, l := range lengths {
		for j := 0; j < l; j++ {
			out = append(out, levels[i])
		}
	}
	return out
}

func whiteNoise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}
