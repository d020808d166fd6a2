package segmentation

import (
	"runtime"
	"strings"

	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

const (
	// ChanceScore is the score of a classifier that cannot tell the two
	// sides of a split apart. Degenerate candidates score exactly this.
	ChanceScore = 0.5

	DefaultExclusionFactor     = 5.0
	DefaultFolds               = 3
	DefaultNeighbours          = 3
	DefaultAcceptanceThreshold = ChanceScore
	DefaultPermutations        = 19
	DefaultSignificanceLevel   = 0.05
	DefaultMinWindow           = 10
	DefaultSeed                = 12345678

	algorithmName    = "clasp"
	algorithmVersion = 1
)

// Format selects how change points are rendered.
type Format string

const (
	FormatSparse Format = "sparse"
	FormatDense  Format = "dense"
)

// Validate checks that the format is known.
func (f Format) Validate() error {
	switch f {
	case FormatSparse, FormatDense:
		return nil
	default:
		return errors.Errorf("invalid output format '%s'", f)
	}
}

// ParseFormat converts a user supplied string into a Format. The empty
// string selects the sparse format.
func ParseFormat(in string) (Format, error) {
	if in == "" {
		return FormatSparse, nil
	}

	f := Format(strings.ToLower(strings.TrimSpace(in)))
	if err := f.Validate(); err != nil {
		return "", err
	}

	return f, nil
}

// Options configure a segmentation. Start from DefaultOptions. Validate
// only fills in Format, Folds, Neighbours, MinWindow and Workers, for
// which zero is not a usable value; an explicit zero exclusion factor,
// acceptance threshold or permutation count is kept.
type Options struct {
	// PeriodLength is the window length. Zero estimates it from the
	// dominant frequency of the sequence.
	PeriodLength int `bson:"period_length" json:"period_length" yaml:"period_length"`
	// NChangePoints caps the number of accepted change points.
	NChangePoints int `bson:"n_change_points" json:"n_change_points" yaml:"n_change_points"`
	// ExclusionFactor multiplies the window length to get the exclusion
	// radius around sequence boundaries and accepted change points.
	ExclusionFactor     float64 `bson:"exclusion_factor" json:"exclusion_factor" yaml:"exclusion_factor"`
	Format              Format  `bson:"format" json:"format" yaml:"format"`
	Folds               int     `bson:"folds" json:"folds" yaml:"folds"`
	Neighbours          int     `bson:"neighbours" json:"neighbours" yaml:"neighbours"`
	AcceptanceThreshold float64 `bson:"acceptance_threshold" json:"acceptance_threshold" yaml:"acceptance_threshold"`
	// Permutations is the number of shuffled copies of a region whose
	// best score is compared against the region's own before a split is
	// accepted. Zero disables the test.
	Permutations int `bson:"permutations" json:"permutations" yaml:"permutations"`
	// SignificanceLevel is the largest permutation p-value at which a
	// split is accepted.
	SignificanceLevel float64 `bson:"significance_level" json:"significance_level" yaml:"significance_level"`
	Seed              int64   `bson:"seed" json:"seed" yaml:"seed"`
	// MinWindow bounds the estimated period from below.
	MinWindow int `bson:"min_window" json:"min_window" yaml:"min_window"`
	// Detrend removes a rolling median before estimating the period.
	Detrend bool `bson:"detrend" json:"detrend" yaml:"detrend"`
	// Workers bounds the number of goroutines scoring candidates. Zero
	// uses GOMAXPROCS.
	Workers int `bson:"workers" json:"workers" yaml:"workers"`
}

// DefaultOptions returns options that find a single change point with
// an estimated window length.
func DefaultOptions() Options {
	return Options{
		NChangePoints:       1,
		ExclusionFactor:     DefaultExclusionFactor,
		Format:              FormatSparse,
		Folds:               DefaultFolds,
		Neighbours:          DefaultNeighbours,
		AcceptanceThreshold: DefaultAcceptanceThreshold,
		Permutations:        DefaultPermutations,
		SignificanceLevel:   DefaultSignificanceLevel,
		Seed:                DefaultSeed,
		MinWindow:           DefaultMinWindow,
	}
}

// Validate fills in the defaults of knobs that cannot be zero and
// reports invalid settings. A
// non-positive change point budget and a negative period length are
// reported on their own so callers can match the sentinel errors.
func (o *Options) Validate() error {
	if o.NChangePoints < 1 {
		return errors.Wrapf(ErrInvalidBudget, "requested %d change points", o.NChangePoints)
	}
	if o.PeriodLength < 0 {
		return errors.Wrapf(ErrInvalidWindowLength, "period length %d", o.PeriodLength)
	}

	if o.Format == "" {
		o.Format = FormatSparse
	}
	if o.Folds == 0 {
		o.Folds = DefaultFolds
	}
	if o.Neighbours == 0 {
		o.Neighbours = DefaultNeighbours
	}
	if o.MinWindow == 0 {
		o.MinWindow = DefaultMinWindow
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	catcher := grip.NewBasicCatcher()
	catcher.Add(o.Format.Validate())
	catcher.NewWhen(o.ExclusionFactor < 0, "exclusion factor must not be negative")
	catcher.NewWhen(o.Folds < 2, "need at least two folds")
	catcher.NewWhen(o.Neighbours < 1, "need at least one neighbour")
	catcher.NewWhen(o.AcceptanceThreshold < 0 || o.AcceptanceThreshold > 1, "acceptance threshold must be within [0,1]")
	catcher.NewWhen(o.MinWindow < 1, "minimum window must be positive")
	catcher.NewWhen(o.Permutations < 0, "permutations must not be negative")
	if o.Permutations > 0 {
		catcher.ErrorfWhen(o.SignificanceLevel <= 0 || o.SignificanceLevel > 1,
			"significance level %g must be within (0,1]", o.SignificanceLevel)
		catcher.ErrorfWhen(o.SignificanceLevel > 0 && o.SignificanceLevel < 1/float64(o.Permutations+1),
			"significance level %g is below the smallest p-value %d permutations can give", o.SignificanceLevel, o.Permutations)
	}

	return catcher.Resolve()
}

// ExclusionRadius converts the exclusion factor into a number of
// samples for window length w.
func (o Options) ExclusionRadius(w int) int {
	return int(o.ExclusionFactor * float64(w))
}

// AlgorithmInfo describes the algorithm and the settings that produced
// a result.
type AlgorithmInfo struct {
	Name    string            `bson:"name" json:"name" yaml:"name"`
	Version int               `bson:"version" json:"version" yaml:"version"`
	Options []AlgorithmOption `bson:"options" json:"options" yaml:"options"`
}

type AlgorithmOption struct {
	Name  string      `bson:"name" json:"name" yaml:"name"`
	Value interface{} `bson:"value" json:"value" yaml:"value"`
}

// Info reports the options as an AlgorithmInfo. The window length is
// the one actually used, which differs from PeriodLength when it was
// estimated.
func (o Options) Info(windowLength int) AlgorithmInfo {
	return AlgorithmInfo{
		Name:    algorithmName,
		Version: algorithmVersion,
		Options: []AlgorithmOption{
			{Name: "window_length", Value: windowLength},
			{Name: "n_change_points", Value: o.NChangePoints},
			{Name: "exclusion_factor", Value: o.ExclusionFactor},
			{Name: "folds", Value: o.Folds},
			{Name: "neighbours", Value: o.Neighbours},
			{Name: "acceptance_threshold", Value: o.AcceptanceThreshold},
			{Name: "permutations", Value: o.Permutations},
			{Name: "significance_level", Value: o.SignificanceLevel},
			{Name: "seed", Value: o.Seed},
		},
	}
}
