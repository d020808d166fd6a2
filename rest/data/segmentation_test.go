package data

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/rest/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const testMaxSeriesLength = 1000

type segmentationConnectorSuite struct {
	ctx    context.Context
	cancel context.CancelFunc
	sc     Connector
	setup  func()

	suite.Suite
}

func TestSegmentationConnectorSuiteEnv(t *testing.T) {
	s := new(segmentationConnectorSuite)
	s.setup = func() {
		conf := clasp.DefaultConfiguration()
		conf.NumWorkers = 2
		conf.Service.MaxSeriesLength = testMaxSeriesLength
		conf.Segmentation = testOptions()

		env := clasp.GetEnvironment()
		s.Require().NoError(env.Configure(conf))
		q, err := env.GetQueue()
		s.Require().NoError(err)
		s.Require().NoError(q.Start(s.ctx))

		s.sc = CreateEnvConnector(env)
	}
	suite.Run(t, s)
}

func TestSegmentationConnectorSuiteMock(t *testing.T) {
	s := new(segmentationConnectorSuite)
	s.setup = func() {
		s.sc = &MockConnector{
			Options:         testOptions(),
			MaxSeriesLength: testMaxSeriesLength,
		}
	}
	suite.Run(t, s)
}

func testOptions() segmentation.Options {
	opts := segmentation.DefaultOptions()
	opts.PeriodLength = 2
	opts.ExclusionFactor = 1
	return opts
}

func tinyStep() []float64 {
	return []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
}

func (s *segmentationConnectorSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.setup()
}

func (s *segmentationConnectorSuite) TearDownSuite() {
	s.cancel()
}

func (s *segmentationConnectorSuite) requireStatus(err error, status int) {
	s.Require().Error(err)
	resp, ok := errors.Cause(err).(gimlet.ErrorResponse)
	s.Require().True(ok, "unexpected error type %T", err)
	s.Equal(status, resp.StatusCode, resp.Message)
}

func (s *segmentationConnectorSuite) TestSegmentSeries() {
	result, err := s.sc.SegmentSeries(s.ctx, model.SegmentRequest{Name: "step", Values: tinyStep()})
	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.NotEmpty(result.ID)
	s.Equal("complete", result.Status)
	s.Equal("step", result.Series)
	s.Equal(10, result.Length)
	s.Equal(2, result.WindowLength)
	s.Equal([]int{5}, result.ChangePoints)
	s.Equal([]float64{1.0}, result.Scores)
	s.Nil(result.Profile)

	found, err := s.sc.FindSegmentationByID(s.ctx, result.ID)
	s.Require().NoError(err)
	s.Equal(result, found)
}

func (s *segmentationConnectorSuite) TestSegmentSeriesWithOptions() {
	format := "dense"
	result, err := s.sc.SegmentSeries(s.ctx, model.SegmentRequest{
		Name:           "step",
		Values:         tinyStep(),
		Options:        &model.APISegmentationOptions{Format: &format},
		IncludeProfile: true,
	})
	s.Require().NoError(err)
	s.Equal("dense", result.Format)
	s.Equal([]int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, result.Output)
	s.Len(result.Profile, 10)
	s.Nil(result.Profile[0])
	s.Require().NotNil(result.Profile[5])
	s.Equal(1.0, *result.Profile[5])
}

func (s *segmentationConnectorSuite) TestSegmentSeriesRejectsBadRequests() {
	zero := 0
	long := 8
	format := "bitmap"
	for _, test := range []struct {
		name   string
		req    model.SegmentRequest
		status int
	}{
		{
			name:   "Empty",
			req:    model.SegmentRequest{Name: "empty"},
			status: http.StatusBadRequest,
		},
		{
			name:   "NotFinite",
			req:    model.SegmentRequest{Name: "nan", Values: []float64{0, 1, math.NaN(), 1}},
			status: http.StatusBadRequest,
		},
		{
			name:   "TooLong",
			req:    model.SegmentRequest{Name: "long", Values: make([]float64, testMaxSeriesLength+1)},
			status: http.StatusRequestEntityTooLarge,
		},
		{
			name: "ZeroBudget",
			req: model.SegmentRequest{
				Name:    "step",
				Values:  tinyStep(),
				Options: &model.APISegmentationOptions{NChangePoints: &zero},
			},
			status: http.StatusBadRequest,
		},
		{
			name: "WindowTooLong",
			req: model.SegmentRequest{
				Name:    "step",
				Values:  tinyStep(),
				Options: &model.APISegmentationOptions{PeriodLength: &long},
			},
			status: http.StatusBadRequest,
		},
		{
			name: "UnknownFormat",
			req: model.SegmentRequest{
				Name:    "step",
				Values:  tinyStep(),
				Options: &model.APISegmentationOptions{Format: &format},
			},
			status: http.StatusBadRequest,
		},
	} {
		s.Run(test.name, func() {
			result, err := s.sc.SegmentSeries(s.ctx, test.req)
			s.Nil(result)
			s.requireStatus(err, test.status)

			job, err := s.sc.ScheduleSegmentation(s.ctx, test.req)
			s.Nil(job)
			s.requireStatus(err, test.status)
		})
	}
}

func (s *segmentationConnectorSuite) TestFindSegmentationByIDNotFound() {
	result, err := s.sc.FindSegmentationByID(s.ctx, "DNE")
	s.Nil(result)
	s.requireStatus(err, http.StatusNotFound)
}

func (s *segmentationConnectorSuite) TestScheduleSegmentation() {
	job, err := s.sc.ScheduleSegmentation(s.ctx, model.SegmentRequest{Name: "queued", Values: tinyStep()})
	s.Require().NoError(err)
	s.Require().NotNil(job)
	s.NotEmpty(job.ID)
	s.Equal("pending", job.Status)

	var result *model.APISegmentation
	s.Require().NoError(utility.Retry(s.ctx, func() (bool, error) {
		result, err = s.sc.FindSegmentationByID(s.ctx, job.ID)
		if err != nil {
			return false, err
		}
		if result.Status != "complete" {
			return true, errors.Errorf("segmentation is %s", result.Status)
		}
		return false, nil
	}, utility.RetryOptions{MaxAttempts: 20}))

	s.Equal("queued", result.Series)
	s.Equal([]int{5}, result.ChangePoints)
}

func (s *segmentationConnectorSuite) TestGetStatus() {
	_, err := s.sc.SegmentSeries(s.ctx, model.SegmentRequest{Name: "step", Values: tinyStep()})
	s.Require().NoError(err)

	status, err := s.sc.GetStatus(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(status)
	s.True(status.CachedResults > 0)
}
