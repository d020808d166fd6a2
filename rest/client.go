package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/evergreen-ci/clasp/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	defaultClientPort int = 3000
	maxClientPort         = 65535
)

// ClientOptions locate a remote clasp service.
type ClientOptions struct {
	Host   string
	Port   int
	Prefix string
	// Client is used instead of a new http.Client when set.
	Client *http.Client
}

// Client talks to a remote clasp REST service.
type Client struct {
	host   string
	prefix string
	port   int
	client *http.Client
}

// NewClient validates the options and constructs a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	c := &Client{client: opts.Client}
	if c.client == nil {
		c.client = &http.Client{}
	}

	if err := c.SetHost(opts.Host); err != nil {
		return nil, err
	}
	if err := c.SetPort(opts.Port); err != nil {
		return nil, err
	}
	if err := c.SetPrefix(opts.Prefix); err != nil {
		return nil, err
	}

	return c, nil
}

////////////////////////////////////////////////////////////////////////
//
// Configuration Interface
//
////////////////////////////////////////////////////////////////////////

// Client returns a pointer to embedded http.Client object.
func (c *Client) Client() *http.Client {
	return c.client
}

// SetHost changes the hostname, including the leading "http(s)".
func (c *Client) SetHost(h string) error {
	if !strings.HasPrefix(h, "http") {
		return errors.Errorf("host '%s' is malformed. must start with 'http'", h)
	}

	c.host = strings.TrimSuffix(h, "/")

	return nil
}

func (c *Client) Host() string {
	return c.host
}

// SetPort changes the port. An invalid port is replaced by the default
// (3000) and reported as an error.
func (c *Client) SetPort(p int) error {
	if p <= 0 || p >= maxClientPort {
		c.port = defaultClientPort
		return errors.Errorf("cannot set the port to %d, using %d instead", p, defaultClientPort)
	}

	c.port = p
	return nil
}

func (c *Client) Port() int {
	return c.port
}

// SetPrefix sets the part of the URI between the host and the API
// version.
func (c *Client) SetPrefix(p string) error {
	c.prefix = strings.Trim(p, "/")
	return nil
}

func (c *Client) Prefix() string {
	return c.prefix
}

func (c *Client) getURL(endpoint string) string {
	var url []string

	if c.port == 80 || c.port == 0 {
		url = append(url, c.host)
	} else {
		url = append(url, fmt.Sprintf("%s:%d", c.host, c.port))
	}

	if c.prefix != "" {
		url = append(url, c.prefix)
	}

	if endpoint = strings.Trim(endpoint, "/"); endpoint != "" {
		url = append(url, endpoint)
	}

	return strings.Join(url, "/")
}

////////////////////////////////////////////////////////////////////////
//
// Public Operations that Interact with the Service
//
////////////////////////////////////////////////////////////////////////

// Segment segments a series on the service and waits for the result.
func (c *Client) Segment(ctx context.Context, req model.SegmentRequest) (*model.APISegmentation, error) {
	out := &model.APISegmentation{}
	if err := c.do(ctx, http.MethodPost, "/v1/segment", req, out); err != nil {
		return nil, errors.Wrapf(err, "problem segmenting series '%s'", req.Name)
	}

	return out, nil
}

// SegmentAsync queues a segmentation on the service.
func (c *Client) SegmentAsync(ctx context.Context, req model.SegmentRequest) (*model.APIJob, error) {
	out := &model.APIJob{}
	if err := c.do(ctx, http.MethodPost, "/v1/segment/async", req, out); err != nil {
		return nil, errors.Wrapf(err, "problem scheduling segmentation of series '%s'", req.Name)
	}

	return out, nil
}

// GetSegmentation fetches a result, which may still be pending.
func (c *Client) GetSegmentation(ctx context.Context, id string) (*model.APISegmentation, error) {
	out := &model.APISegmentation{}
	if err := c.do(ctx, http.MethodGet, "/v1/segment/"+id, nil, out); err != nil {
		return nil, errors.Wrapf(err, "problem getting segmentation '%s'", id)
	}

	return out, nil
}

func (c *Client) GetStatus(ctx context.Context) (*model.APIStatus, error) {
	out := &model.APIStatus{}
	if err := c.do(ctx, http.MethodGet, "/v1/status", nil, out); err != nil {
		return nil, errors.Wrap(err, "problem getting status")
	}

	return out, nil
}

// do sends the request and decodes a successful response into out.
// Error responses come back as gimlet.ErrorResponse values.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "problem encoding request")
		}
	}

	url := c.getURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return errors.WithStack(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	grip.Debug(message.Fields{
		"message": "sending request",
		"method":  method,
		"url":     url,
	})

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "problem sending request to '%s'", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errResp := gimlet.ErrorResponse{}
		if err = gimlet.GetJSON(resp.Body, &errResp); err != nil || errResp.Message == "" {
			errResp.Message = http.StatusText(resp.StatusCode)
		}
		errResp.StatusCode = resp.StatusCode
		return errResp
	}

	return errors.Wrap(gimlet.GetJSON(resp.Body, out), "problem reading response")
}
