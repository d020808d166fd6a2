package rest

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/clasp/rest/data"
	"github.com/evergreen-ci/clasp/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

///////////////////////////////////////////////////////////////////////////////
//
// POST /segment

type segmentHandler struct {
	req model.SegmentRequest
	sc  data.Connector
}

func makeSegment(sc data.Connector) gimlet.RouteHandler {
	return &segmentHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new segmentHandler.
func (h *segmentHandler) Factory() gimlet.RouteHandler {
	return &segmentHandler{
		sc: h.sc,
	}
}

// Parse reads the series and options from the request body.
func (h *segmentHandler) Parse(ctx context.Context, r *http.Request) error {
	return parseSegmentRequest(ctx, r, "/segment", &h.req)
}

// Run segments the series and returns the result.
func (h *segmentHandler) Run(ctx context.Context) gimlet.Responder {
	result, err := h.sc.SegmentSeries(ctx, h.req)
	if err != nil {
		err = errors.Wrapf(err, "problem segmenting series '%s'", h.req.Name)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "POST",
			"route":   "/segment",
			"series":  h.req.Name,
			"length":  len(h.req.Values),
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}

	return gimlet.NewJSONResponse(result)
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /segment/async

type segmentAsyncHandler struct {
	req model.SegmentRequest
	sc  data.Connector
}

func makeSegmentAsync(sc data.Connector) gimlet.RouteHandler {
	return &segmentAsyncHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new segmentAsyncHandler.
func (h *segmentAsyncHandler) Factory() gimlet.RouteHandler {
	return &segmentAsyncHandler{
		sc: h.sc,
	}
}

// Parse reads the series and options from the request body.
func (h *segmentAsyncHandler) Parse(ctx context.Context, r *http.Request) error {
	return parseSegmentRequest(ctx, r, "/segment/async", &h.req)
}

// Run queues the segmentation and returns the id of its result.
func (h *segmentAsyncHandler) Run(ctx context.Context) gimlet.Responder {
	job, err := h.sc.ScheduleSegmentation(ctx, h.req)
	if err != nil {
		err = errors.Wrapf(err, "problem scheduling segmentation of series '%s'", h.req.Name)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "POST",
			"route":   "/segment/async",
			"series":  h.req.Name,
			"length":  len(h.req.Values),
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}

	return gimlet.NewJSONResponse(job)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /segment/{id}

type segmentGetByIDHandler struct {
	id string
	sc data.Connector
}

func makeGetSegmentByID(sc data.Connector) gimlet.RouteHandler {
	return &segmentGetByIDHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new segmentGetByIDHandler.
func (h *segmentGetByIDHandler) Factory() gimlet.RouteHandler {
	return &segmentGetByIDHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request.
func (h *segmentGetByIDHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	if h.id == "" {
		return errors.New("missing segmentation id")
	}
	return nil
}

// Run calls FindSegmentationByID and returns the segmentation.
func (h *segmentGetByIDHandler) Run(ctx context.Context) gimlet.Responder {
	result, err := h.sc.FindSegmentationByID(ctx, h.id)
	if err != nil {
		err = errors.Wrapf(err, "problem getting segmentation by id '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/segment/{id}",
			"id":      h.id,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}

	return gimlet.NewJSONResponse(result)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /status

type statusHandler struct {
	sc data.Connector
}

func makeGetStatus(sc data.Connector) gimlet.RouteHandler {
	return &statusHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new statusHandler.
func (h *statusHandler) Factory() gimlet.RouteHandler {
	return &statusHandler{
		sc: h.sc,
	}
}

func (h *statusHandler) Parse(_ context.Context, _ *http.Request) error { return nil }

// Run returns the queue and cache status.
func (h *statusHandler) Run(ctx context.Context) gimlet.Responder {
	status, err := h.sc.GetStatus(ctx)
	if err != nil {
		err = errors.Wrap(err, "problem getting service status")
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/status",
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}

	return gimlet.NewJSONResponse(status)
}

func parseSegmentRequest(ctx context.Context, r *http.Request, route string, req *model.SegmentRequest) error {
	if err := gimlet.GetJSON(r.Body, req); err != nil {
		err = errors.Wrap(err, "problem parsing segmentation request")
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "POST",
			"route":   route,
		}))
		return err
	}

	return nil
}
