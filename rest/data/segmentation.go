package data

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evergreen-ci/clasp"
	dbmodel "github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/rest/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/clasp/units"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/pkg/errors"
)

/////////////////////////////
// EnvConnector Implementation
/////////////////////////////

// SegmentSeries segments the series in the request with the configured
// defaults overridden by the request options and caches the result.
func (dbc *EnvConnector) SegmentSeries(ctx context.Context, req model.SegmentRequest) (*model.APISegmentation, error) {
	conf, cache, err := dbc.resources()
	if err != nil {
		return nil, err
	}

	segmenter, err := prepareRequest(req, conf.SegmentationOptions(), conf.Service.MaxSeriesLength)
	if err != nil {
		return nil, err
	}

	result, err := segmenter.Segment(ctx, req.Values)
	if err != nil {
		return nil, segmentationError(err, req.Name)
	}

	record := dbmodel.CreateSegmentation(utility.RandomString(), req.Name, result, req.IncludeProfile || conf.IncludeProfiles)
	cache.Put(clasp.ResultKey(record.ID), record)

	return importSegmentation(record)
}

// ScheduleSegmentation stores a pending result and queues the job that
// replaces it. Requests that could never succeed are rejected before
// anything is queued.
func (dbc *EnvConnector) ScheduleSegmentation(ctx context.Context, req model.SegmentRequest) (*model.APIJob, error) {
	conf, cache, err := dbc.resources()
	if err != nil {
		return nil, err
	}

	segmenter, err := prepareRequest(req, conf.SegmentationOptions(), conf.Service.MaxSeriesLength)
	if err != nil {
		return nil, err
	}

	queue, err := dbc.env.GetQueue()
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "getting queue").Error(),
		}
	}

	j := units.NewSegmentSeriesJob("", req.Series(), segmenter.Options(), req.IncludeProfile || conf.IncludeProfiles)
	key := clasp.ResultKey(j.ResultID)
	cache.Put(key, dbmodel.PendingSegmentation(j.ResultID, req.Name, len(req.Values)))

	if err = amboy.EnqueueUniqueJob(ctx, queue, j); err != nil {
		cache.Delete(key)
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrapf(err, "queueing segmentation of series '%s'", req.Name).Error(),
		}
	}

	return &model.APIJob{ID: j.ResultID, Status: string(dbmodel.SegmentationPending)}, nil
}

// FindSegmentationByID returns the cached segmentation with the given
// id, which may still be pending.
func (dbc *EnvConnector) FindSegmentationByID(_ context.Context, id string) (*model.APISegmentation, error) {
	_, cache, err := dbc.resources()
	if err != nil {
		return nil, err
	}

	value, ok := cache.Get(clasp.ResultKey(id))
	if !ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("segmentation '%s' not found", id),
		}
	}

	record, ok := value.(dbmodel.Segmentation)
	if !ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("cached value for segmentation '%s' has type %T", id, value),
		}
	}

	return importSegmentation(record)
}

// GetStatus returns the status maintained by the running service, or
// computes it when nothing keeps it current.
func (dbc *EnvConnector) GetStatus(ctx context.Context) (*model.APIStatus, error) {
	_, cache, err := dbc.resources()
	if err != nil {
		return nil, err
	}

	if value, ok := cache.Get(clasp.StatusKey); ok {
		if status, ok := value.(model.APIStatus); ok {
			return &status, nil
		}
	}

	status, err := QueueStatus(ctx, dbc.env)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
		}
	}

	return status, nil
}

func (dbc *EnvConnector) resources() (*clasp.Configuration, clasp.EnvironmentCache, error) {
	conf, err := dbc.env.GetConf()
	if err != nil {
		return nil, nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "getting configuration").Error(),
		}
	}

	cache, err := dbc.env.GetCache()
	if err != nil {
		return nil, nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "getting result cache").Error(),
		}
	}

	return conf, cache, nil
}

// QueueStatus reads the queue statistics and the size of the result
// cache of env.
func QueueStatus(ctx context.Context, env clasp.Environment) (*model.APIStatus, error) {
	queue, err := env.GetQueue()
	if err != nil {
		return nil, errors.Wrap(err, "getting queue")
	}

	cache, err := env.GetCache()
	if err != nil {
		return nil, errors.Wrap(err, "getting result cache")
	}

	cached := cache.Len()
	if _, ok := cache.Get(clasp.StatusKey); ok {
		cached--
	}

	stats := queue.Stats(ctx)
	return &model.APIStatus{
		Revision:      clasp.BuildRevision,
		QueueRunning:  queue.Info().Started,
		Pending:       stats.Pending,
		Running:       stats.Running,
		Completed:     stats.Completed,
		Total:         stats.Total,
		CachedResults: cached,
	}, nil
}

/////////////////////////////
// MockConnector Implementation
/////////////////////////////

// MockConnector keeps segmentations in a map and runs scheduled
// segmentations before returning.
type MockConnector struct {
	CachedSegmentations map[string]dbmodel.Segmentation
	Options             segmentation.Options
	MaxSeriesLength     int
	Status              model.APIStatus
}

func (mc *MockConnector) SegmentSeries(ctx context.Context, req model.SegmentRequest) (*model.APISegmentation, error) {
	record, err := mc.segment(ctx, req)
	if err != nil {
		return nil, err
	}

	return importSegmentation(record)
}

func (mc *MockConnector) ScheduleSegmentation(ctx context.Context, req model.SegmentRequest) (*model.APIJob, error) {
	record, err := mc.segment(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.APIJob{ID: record.ID, Status: string(dbmodel.SegmentationPending)}, nil
}

func (mc *MockConnector) FindSegmentationByID(_ context.Context, id string) (*model.APISegmentation, error) {
	record, ok := mc.CachedSegmentations[id]
	if !ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("segmentation '%s' not found", id),
		}
	}

	return importSegmentation(record)
}

func (mc *MockConnector) GetStatus(_ context.Context) (*model.APIStatus, error) {
	status := mc.Status
	status.CachedResults = len(mc.CachedSegmentations)
	return &status, nil
}

func (mc *MockConnector) segment(ctx context.Context, req model.SegmentRequest) (dbmodel.Segmentation, error) {
	segmenter, err := prepareRequest(req, mc.Options, mc.MaxSeriesLength)
	if err != nil {
		return dbmodel.Segmentation{}, err
	}

	result, err := segmenter.Segment(ctx, req.Values)
	if err != nil {
		return dbmodel.Segmentation{}, segmentationError(err, req.Name)
	}

	if mc.CachedSegmentations == nil {
		mc.CachedSegmentations = map[string]dbmodel.Segmentation{}
	}
	record := dbmodel.CreateSegmentation(utility.RandomString(), req.Name, result, req.IncludeProfile)
	mc.CachedSegmentations[record.ID] = record

	return record, nil
}

/////////
// Helpers
/////////

// prepareRequest checks the series and builds a segmenter from the
// request options applied over base.
func prepareRequest(req model.SegmentRequest, base segmentation.Options, maxLength int) (*segmentation.Segmenter, error) {
	series := req.Series()
	if err := series.Validate(); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	if maxLength > 0 && len(req.Values) > maxLength {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusRequestEntityTooLarge,
			Message:    fmt.Sprintf("series has %d values, the limit is %d", len(req.Values), maxLength),
		}
	}

	opts, err := req.Options.Apply(base)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	segmenter, err := segmentation.NewSegmenter(opts)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    errors.Wrap(err, "invalid segmentation options").Error(),
		}
	}

	return segmenter, nil
}

// segmentationError maps input validation failures to bad requests.
func segmentationError(err error, name string) error {
	status := http.StatusInternalServerError
	switch errors.Cause(err) {
	case segmentation.ErrInvalidWindowLength, segmentation.ErrInsufficientLength,
		segmentation.ErrSequenceTooShort, segmentation.ErrInvalidBudget:
		status = http.StatusBadRequest
	}

	return gimlet.ErrorResponse{
		StatusCode: status,
		Message:    errors.Wrapf(err, "segmenting series '%s'", name).Error(),
	}
}

func importSegmentation(record dbmodel.Segmentation) (*model.APISegmentation, error) {
	out := &model.APISegmentation{}
	if err := out.Import(record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrapf(err, "converting segmentation '%s' to API model", record.ID).Error(),
		}
	}

	return out, nil
}
