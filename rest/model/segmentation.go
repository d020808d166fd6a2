package model

import (
	"time"

	dbmodel "github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/pkg/errors"
)

// SegmentRequest is the body of the segmentation routes.
type SegmentRequest struct {
	Name           string                  `json:"name"`
	Values         []float64               `json:"values"`
	Options        *APISegmentationOptions `json:"options,omitempty"`
	IncludeProfile bool                    `json:"include_profile"`
}

// Series returns the series carried by the request.
func (r *SegmentRequest) Series() dbmodel.Series {
	return dbmodel.Series{Name: r.Name, Values: r.Values}
}

// APISegmentationOptions overrides the service defaults. Unset fields
// keep the default.
type APISegmentationOptions struct {
	PeriodLength        *int     `json:"period_length,omitempty"`
	NChangePoints       *int     `json:"n_change_points,omitempty"`
	ExclusionFactor     *float64 `json:"exclusion_factor,omitempty"`
	Format              *string  `json:"format,omitempty"`
	Folds               *int     `json:"folds,omitempty"`
	Neighbours          *int     `json:"neighbours,omitempty"`
	AcceptanceThreshold *float64 `json:"acceptance_threshold,omitempty"`
	Permutations        *int     `json:"permutations,omitempty"`
	SignificanceLevel   *float64 `json:"significance_level,omitempty"`
	Seed                *int64   `json:"seed,omitempty"`
	MinWindow           *int     `json:"min_window,omitempty"`
	Detrend             *bool    `json:"detrend,omitempty"`
}

// Apply returns base with the set fields replaced.
func (o *APISegmentationOptions) Apply(base segmentation.Options) (segmentation.Options, error) {
	if o == nil {
		return base, nil
	}

	out := base
	if o.PeriodLength != nil {
		out.PeriodLength = *o.PeriodLength
	}
	if o.NChangePoints != nil {
		out.NChangePoints = *o.NChangePoints
	}
	if o.ExclusionFactor != nil {
		out.ExclusionFactor = *o.ExclusionFactor
	}
	if o.Format != nil {
		format, err := segmentation.ParseFormat(*o.Format)
		if err != nil {
			return segmentation.Options{}, errors.WithStack(err)
		}
		out.Format = format
	}
	if o.Folds != nil {
		out.Folds = *o.Folds
	}
	if o.Neighbours != nil {
		out.Neighbours = *o.Neighbours
	}
	if o.AcceptanceThreshold != nil {
		out.AcceptanceThreshold = *o.AcceptanceThreshold
	}
	if o.Permutations != nil {
		out.Permutations = *o.Permutations
	}
	if o.SignificanceLevel != nil {
		out.SignificanceLevel = *o.SignificanceLevel
	}
	if o.Seed != nil {
		out.Seed = *o.Seed
	}
	if o.MinWindow != nil {
		out.MinWindow = *o.MinWindow
	}
	if o.Detrend != nil {
		out.Detrend = *o.Detrend
	}

	return out, nil
}

// APISegmentation is the API view of a stored segmentation.
type APISegmentation struct {
	ID           string                     `json:"id"`
	Status       string                     `json:"status"`
	Error        string                     `json:"error,omitempty"`
	Series       string                     `json:"series"`
	Length       int                        `json:"length"`
	WindowLength int                        `json:"window_length,omitempty"`
	Format       string                     `json:"format,omitempty"`
	ChangePoints []int                      `json:"change_points"`
	Output       []int                      `json:"output,omitempty"`
	Scores       []float64                  `json:"scores"`
	PValues      []float64                  `json:"p_values,omitempty"`
	Segments     []segmentation.Segment     `json:"segments,omitempty"`
	Profile      []*float64                 `json:"profile,omitempty"`
	Algorithm    segmentation.AlgorithmInfo `json:"algorithm"`
	CalculatedOn *time.Time                 `json:"calculated_on,omitempty"`
}

// Import transforms a model.Segmentation into an APISegmentation.
func (s *APISegmentation) Import(i interface{}) error {
	var record dbmodel.Segmentation
	switch v := i.(type) {
	case dbmodel.Segmentation:
		record = v
	case *dbmodel.Segmentation:
		if v == nil {
			return errors.New("cannot import nil segmentation")
		}
		record = *v
	default:
		return errors.Errorf("incorrect type %T when importing segmentation", i)
	}

	s.ID = record.ID
	s.Status = string(record.Status)
	s.Error = record.Error
	s.Series = record.Series
	s.Length = record.Length
	s.WindowLength = record.WindowLength
	s.Format = string(record.Format)
	s.ChangePoints = record.ChangePoints
	s.Output = record.Output
	s.Scores = record.Scores
	s.PValues = record.PValues
	s.Segments = record.Segments
	s.Profile = record.Profile
	s.Algorithm = record.Algorithm
	if !record.CalculatedOn.IsZero() {
		calculated := record.CalculatedOn
		s.CalculatedOn = &calculated
	}

	if s.ChangePoints == nil {
		s.ChangePoints = []int{}
	}
	if s.Scores == nil {
		s.Scores = []float64{}
	}

	return nil
}

// Export returns the model.Segmentation behind the API view.
func (s *APISegmentation) Export() (interface{}, error) {
	out := dbmodel.Segmentation{
		ID:           s.ID,
		Status:       dbmodel.SegmentationStatus(s.Status),
		Error:        s.Error,
		Series:       s.Series,
		Length:       s.Length,
		WindowLength: s.WindowLength,
		Format:       segmentation.Format(s.Format),
		ChangePoints: s.ChangePoints,
		Output:       s.Output,
		Scores:       s.Scores,
		PValues:      s.PValues,
		Segments:     s.Segments,
		Profile:      s.Profile,
		Algorithm:    s.Algorithm,
	}
	if s.CalculatedOn != nil {
		out.CalculatedOn = *s.CalculatedOn
	}

	return out, nil
}

// APIJob identifies a segmentation scheduled on the queue.
type APIJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// APIStatus reports the state of the service and its queue.
type APIStatus struct {
	Revision      string `json:"revision"`
	QueueRunning  bool   `json:"queue_running"`
	Pending       int    `json:"pending"`
	Running       int    `json:"running"`
	Completed     int    `json:"completed"`
	Total         int    `json:"total"`
	CachedResults int    `json:"cached_results"`
}
