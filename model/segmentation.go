package model

import (
	"math"
	"time"

	"github.com/evergreen-ci/clasp/segmentation"
)

// SegmentationStatus tracks a segmentation run by a background job.
type SegmentationStatus string

const (
	SegmentationPending  SegmentationStatus = "pending"
	SegmentationComplete SegmentationStatus = "complete"
	SegmentationFailed   SegmentationStatus = "failed"
)

// Segmentation is the stored outcome of segmenting one series.
type Segmentation struct {
	ID           string                     `bson:"_id" json:"id" yaml:"id"`
	Status       SegmentationStatus         `bson:"status" json:"status" yaml:"status"`
	Error        string                     `bson:"error,omitempty" json:"error,omitempty" yaml:"error,omitempty"`
	Series       string                     `bson:"series" json:"series" yaml:"series"`
	Length       int                        `bson:"length" json:"length" yaml:"length"`
	WindowLength int                        `bson:"window_length" json:"window_length" yaml:"window_length"`
	Format       segmentation.Format        `bson:"format" json:"format" yaml:"format"`
	ChangePoints []int                      `bson:"change_points" json:"change_points" yaml:"change_points"`
	Output       []int                      `bson:"output" json:"output" yaml:"output"`
	Scores       []float64                  `bson:"scores" json:"scores" yaml:"scores"`
	PValues      []float64                  `bson:"p_values,omitempty" json:"p_values,omitempty" yaml:"p_values,omitempty"`
	Segments     []segmentation.Segment     `bson:"segments" json:"segments" yaml:"segments"`
	Profile      []*float64                 `bson:"profile,omitempty" json:"profile,omitempty" yaml:"profile,omitempty"`
	Algorithm    segmentation.AlgorithmInfo `bson:"algorithm" json:"algorithm" yaml:"algorithm"`
	CalculatedOn time.Time                  `bson:"calculated_on" json:"calculated_on" yaml:"calculated_on"`
}

// CreateSegmentation converts a result into a record. The whole-sequence
// score profile is kept when withProfile is set, with unscored indexes
// as nulls.
func CreateSegmentation(id, series string, result *segmentation.Result, withProfile bool) Segmentation {
	out := Segmentation{
		ID:           id,
		Status:       SegmentationComplete,
		Series:       series,
		Length:       result.SeriesLength,
		WindowLength: result.WindowLength,
		Format:       result.Format,
		ChangePoints: result.ChangePoints.Sparse(),
		Output:       result.Output(),
		Scores:       result.ScoreList(),
		PValues:      result.PValueList(),
		Segments:     result.Segments(),
		Algorithm:    result.Info,
		CalculatedOn: time.Now(),
	}

	if withProfile {
		out.Profile = nullableScores(result.Profile())
	}

	return out
}

func nullableScores(scores []float64) []*float64 {
	if scores == nil {
		return nil
	}

	out := make([]*float64, len(scores))
	for i := range scores {
		if math.IsNaN(scores[i]) {
			continue
		}
		v := scores[i]
		out[i] = &v
	}
	return out
}

// PendingSegmentation is the placeholder stored while a job runs.
func PendingSegmentation(id, series string, length int) Segmentation {
	return Segmentation{ID: id, Status: SegmentationPending, Series: series, Length: length}
}

// FailedSegmentation records why a job could not segment a series.
func FailedSegmentation(id, series string, length int, err error) Segmentation {
	out := Segmentation{ID: id, Status: SegmentationFailed, Series: series, Length: length, CalculatedOn: time.Now()}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
