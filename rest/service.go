package rest

import (
	"context"
	"time"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/rest/data"
	"github.com/evergreen-ci/clasp/units"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/amboy"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
	"github.com/pkg/errors"
)

const (
	defaultStatusInterval = 10 * time.Second
	defaultStatsInterval  = time.Minute
)

type Service struct {
	Port        int
	Prefix      string
	Environment clasp.Environment
	// StatusInterval is how often the cached service status is
	// refreshed.
	StatusInterval time.Duration
	// StatsInterval is how often queue statistics are logged.
	StatsInterval time.Duration

	// internal settings
	queue amboy.Queue
	app   *gimlet.APIApp
	sc    data.Connector
}

func (s *Service) Validate() error {
	var err error

	if s.Environment == nil {
		return errors.New("must specify an environment")
	}

	if s.queue == nil {
		s.queue, err = s.Environment.GetQueue()
		if err != nil {
			return errors.Wrap(err, "problem getting queue")
		}
		if s.queue == nil {
			return errors.New("no queue defined")
		}
	}

	if s.sc == nil {
		s.sc = data.CreateEnvConnector(s.Environment)
	}

	if s.app == nil {
		s.app = gimlet.NewApp()
	}

	if s.Port == 0 {
		s.Port = 3000
	}

	if s.StatusInterval <= 0 {
		s.StatusInterval = defaultStatusInterval
	}
	if s.StatsInterval <= 0 {
		s.StatsInterval = defaultStatsInterval
	}

	if err := s.app.SetPort(s.Port); err != nil {
		return errors.WithStack(err)
	}

	if s.Prefix != "" {
		s.app.SetPrefix(s.Prefix)
	}

	return nil
}

// Start starts the queue and serves the routes until ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	if s.queue == nil || s.app == nil {
		return errors.New("application is not valid")
	}

	s.addRoutes()

	if err := s.queue.Start(ctx); err != nil {
		return errors.Wrap(err, "problem starting queue")
	}

	if err := s.startStatusUpdater(ctx); err != nil {
		return errors.Wrap(err, "problem starting status updater")
	}

	if err := units.StartCrons(ctx, s.Environment, s.StatsInterval); err != nil {
		return errors.Wrap(err, "problem starting background jobs")
	}

	if err := s.app.Resolve(); err != nil {
		return errors.Wrap(err, "problem resolving routes")
	}

	return s.app.Run(ctx)
}

func (s *Service) addRoutes() {
	s.app.AddRoute("/segment").Version(1).Post().RouteHandler(makeSegment(s.sc))
	s.app.AddRoute("/segment/async").Version(1).Post().RouteHandler(makeSegmentAsync(s.sc))
	s.app.AddRoute("/segment/{id}").Version(1).Get().RouteHandler(makeGetSegmentByID(s.sc))
	s.app.AddRoute("/status").Version(1).Get().RouteHandler(makeGetStatus(s.sc))
}

// startStatusUpdater caches the service status and keeps it current
// until ctx is canceled or the status cannot be read.
func (s *Service) startStatusUpdater(ctx context.Context) error {
	cache, err := s.Environment.GetCache()
	if err != nil {
		return errors.WithStack(err)
	}

	status, err := data.QueueStatus(ctx, s.Environment)
	if err != nil {
		return errors.WithStack(err)
	}
	cache.Put(clasp.StatusKey, *status)

	updates := make(chan interface{})
	uctx, cancel := context.WithCancel(ctx)
	if !cache.RegisterUpdater(uctx, cancel, clasp.StatusKey, updates) {
		cancel()
		return errors.New("status already has an updater")
	}

	go func() {
		defer recovery.LogStackTraceAndContinue("service status updater")

		ticker := time.NewTicker(s.StatusInterval)
		defer ticker.Stop()

		for {
			select {
			case <-uctx.Done():
				return
			case <-ticker.C:
				var update interface{}
				status, err := data.QueueStatus(uctx, s.Environment)
				if err != nil {
					grip.Warning(message.WrapError(err, message.Fields{
						"message": "stopping status updates",
					}))
					update = err
				} else {
					update = *status
				}

				select {
				case updates <- update:
				case <-uctx.Done():
					return
				}

				if err != nil {
					return
				}
			}
		}
	}()

	return nil
}
