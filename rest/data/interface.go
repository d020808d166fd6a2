package data

import (
	"context"

	"github.com/evergreen-ci/clasp/rest/model"
)

// Connector abstracts the link between the segmentation service and the
// API layer, allowing for changes in the service architecture without
// forcing changes to the API.
type Connector interface {
	// SegmentSeries segments the series in the request and returns the
	// stored result.
	SegmentSeries(context.Context, model.SegmentRequest) (*model.APISegmentation, error)
	// ScheduleSegmentation validates the request and queues a job that
	// segments the series, returning the id of the pending result.
	ScheduleSegmentation(context.Context, model.SegmentRequest) (*model.APIJob, error)
	// FindSegmentationByID returns the segmentation with the given id.
	FindSegmentationByID(context.Context, string) (*model.APISegmentation, error)
	// GetStatus reports the state of the queue and the result cache.
	GetStatus(context.Context) (*model.APIStatus, error)
}
