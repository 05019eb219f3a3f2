package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/dmitrijs2005/sforce/logging"
	"github.com/dmitrijs2005/sforce/session"
	"github.com/dmitrijs2005/sforce/sferr"
)

// Request describes one call against an endpoint family. Endpoint is joined
// onto the family base URL, so it must not start with a slash.
type Request struct {
	Method   string
	API      API
	Endpoint string
	// Body is sent verbatim; callers marshal JSON themselves. Bulk query
	// batches rely on this to send a raw SOQL string.
	Body []byte
	// Headers are merged over the defaults; caller values win on collision.
	Headers map[string]string
	Query   url.Values
	// Name is the collaborating object or job, used for error context only.
	Name string
}

// Response is the consumed HTTP response: status, headers and the full body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// URL is the fully resolved request URL, kept for error reporting.
	URL string
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Sessions is the slice of the session manager the dispatcher needs.
type Sessions interface {
	EnsureFresh(ctx context.Context) (session.Session, error)
	Renew(ctx context.Context) (session.Session, error)
}

// Dispatcher sends authenticated requests over a shared *http.Client. It is
// safe for concurrent use; the only mutable state is the usage snapshot,
// which is replaced atomically.
type Dispatcher struct {
	sessions Sessions
	hc       *http.Client
	log      logging.Logger

	usage atomic.Pointer[UsageSnapshot]
}

// NewDispatcher builds a Dispatcher. A nil http.Client means
// http.DefaultClient; a nil logger discards.
func NewDispatcher(sessions Sessions, hc *http.Client, log logging.Logger) *Dispatcher {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Dispatcher{sessions: sessions, hc: hc, log: log}
}

// Usage returns the latest rate-limit snapshot. The zero value is returned
// until a response carries the header.
func (d *Dispatcher) Usage() UsageSnapshot {
	if s := d.usage.Load(); s != nil {
		return *s
	}
	return UsageSnapshot{}
}

// Send performs one request. The session is refreshed first; on a classified
// ExpiredSession response the session is renewed and the request replayed
// exactly once, surfacing the retry's own error if it also fails. Every
// other non-2xx response surfaces immediately.
func (d *Dispatcher) Send(ctx context.Context, req Request) (*Response, error) {
	sess, err := d.sessions.EnsureFresh(ctx)
	if err != nil {
		return nil, err
	}

	base, err := familyURL(sess, req.API)
	if err != nil {
		return nil, err
	}
	return d.send(ctx, sess, base+req.Endpoint, req)
}

// SendURL performs a request against a fully resolved URL on the current
// instance. Query pagination hands back absolute nextRecordsUrl paths, which
// bypass the family templates.
func (d *Dispatcher) SendURL(ctx context.Context, rawURL string, req Request) (*Response, error) {
	sess, err := d.sessions.EnsureFresh(ctx)
	if err != nil {
		return nil, err
	}
	return d.send(ctx, sess, rawURL, req)
}

// InstanceURL joins a server-relative path (e.g. a nextRecordsUrl) onto the
// current instance host.
func (d *Dispatcher) InstanceURL(ctx context.Context, path string) (string, error) {
	sess, err := d.sessions.EnsureFresh(ctx)
	if err != nil {
		return "", err
	}
	return "https://" + sess.InstanceHost + path, nil
}

func (d *Dispatcher) send(ctx context.Context, sess session.Session, fullURL string, req Request) (*Response, error) {
	resp, err := d.do(ctx, sess.Token, fullURL, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		clsErr := sferr.Classify(resp.StatusCode, resp.Body, resp.URL, req.Name)
		if !errors.Is(clsErr, sferr.ErrExpiredSession) {
			return nil, clsErr
		}

		d.log.Warn(ctx, "session expired, renewing and replaying once", "url", resp.URL)
		sess, err = d.sessions.Renew(ctx)
		if err != nil {
			// The true root cause is the failed renewal, not the 401.
			return nil, err
		}

		resp, err = d.do(ctx, sess.Token, fullURL, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, sferr.Classify(resp.StatusCode, resp.Body, resp.URL, req.Name)
		}
	}

	return resp, nil
}

// do performs a single HTTP round trip and captures the rate-limit header.
func (d *Dispatcher) do(ctx context.Context, token, fullURL string, req Request) (*Response, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, sferr.Configuration("invalid request URL %q: %v", fullURL, err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Authorization", "Bearer "+token)
	hreq.Header.Set("X-PrettyPrint", "1")
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}

	d.log.Debug(ctx, "api call", "method", req.Method, "url", u.String())

	hresp, err := d.hc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
		Body:       respBody,
		URL:        u.String(),
	}
	d.captureUsage(ctx, hresp.Header)
	return resp, nil
}

// captureUsage replaces the usage snapshot when the response carries a
// parseable Sforce-Limit-Info header. Malformed headers are ignored.
func (d *Dispatcher) captureUsage(ctx context.Context, h http.Header) {
	v := h.Get(LimitInfoHeader)
	if v == "" {
		return
	}
	snap, ok := parseUsage(v)
	if !ok {
		d.log.Debug(ctx, "ignoring malformed rate-limit header", "value", v)
		return
	}
	d.usage.Store(&snap)
}
