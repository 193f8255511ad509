// Package client speaks the Telegram Bot HTTP API wire protocol: it builds
// request URLs from a method name and arguments, executes them, and unwraps
// the {ok, result} envelope into a jsonx value or a typed error.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/iamwavecut/tgward/internal/jsonx"
	"github.com/iamwavecut/tgward/internal/observability"
)

const defaultHost = "api.telegram.org"

type Client struct {
	token   string
	baseURL string
	hc      *http.Client
	logger  *log.Entry
}

type Option func(*Client)

// WithHost overrides the API host.
func WithHost(host string) Option {
	return func(c *Client) { c.baseURL = "https://" + host }
}

// WithBaseURL overrides the full scheme://host prefix. Used against test servers.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(token string, logger *log.Entry, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: "https://" + defaultHost,
		hc:      &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// methodURL synthesizes https://<host>/bot<token>/<method>?<encoded args>.
func (c *Client) methodURL(method string, args url.Values) string {
	u := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	if len(args) > 0 {
		u += "?" + args.Encode()
	}
	return u
}

// FileLink derives the download URL for a file path returned by getFile.
func (c *Client) FileLink(filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
}

// Call executes one API method. Each call is independent; the only state is
// the configured token. Transport failures surface as *ConnectivityError,
// malformed envelopes as *ProtocolError, ok:false as *RemoteError.
func (c *Client) Call(ctx context.Context, method string, args url.Values) (jsonx.Value, error) {
	start := time.Now()
	defer observability.ObserveAPICall(method, start)
	ctx, span := otel.Tracer("tgward/client").Start(ctx, method)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL(method, args), nil)
	if err != nil {
		return jsonx.Value{}, &ConnectivityError{err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return jsonx.Value{}, &ConnectivityError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return jsonx.Value{}, &ConnectivityError{err: err}
	}

	envelope, err := jsonx.Parse(body)
	if err != nil {
		return jsonx.Value{}, &ProtocolError{err: err}
	}
	obj, err := envelope.Object()
	if err != nil {
		return jsonx.Value{}, &ProtocolError{err: err}
	}
	ok, err := obj.Bool("ok")
	if err != nil {
		return jsonx.Value{}, &ProtocolError{err: err}
	}

	if !ok {
		code, codeErr := obj.Int("error_code")
		description, descErr := obj.String("description")
		if codeErr != nil || descErr != nil {
			return jsonx.Value{}, &ProtocolError{err: fmt.Errorf("ok:false envelope without error details")}
		}
		remoteErr := mapRemoteError(code, description)
		span.RecordError(remoteErr)
		c.logger.WithField("method", method).WithField("code", code).Warn(description)
		return jsonx.Value{}, remoteErr
	}

	result, err := obj.Value("result")
	if err != nil {
		return jsonx.Value{}, &ProtocolError{err: err}
	}
	c.logger.WithField("method", method).Trace("api call ok")
	return result, nil
}
