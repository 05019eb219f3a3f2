// Package sforce is a client library for the Salesforce REST, Bulk and
// Tooling APIs.
//
// # Overview
//
// A Client wraps an authenticated session for easy use of the REST API:
// per-object CRUD through SObject handles, SOQL queries with transparent
// pagination, SOSL search, Apex and Tooling endpoints, and large-scale data
// loads through the Bulk API engine in package bulk.
//
// Sessions renew themselves: every call checks the expiry first, and a call
// rejected with an expired-session error renews once and replays. Failures
// map onto the closed taxonomy in package sferr and are matched with
// errors.Is.
//
// # Authentication
//
// Credentials select exactly one login method (see package session). By
// default the password-based methods log in through the partner SOAP
// endpoint; a custom provider (e.g. a JWT bearer flow) can be injected with
// WithLoginProvider. NewWithSession wraps an already-acquired session id.
package sforce

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sforce/bulk"
	"github.com/dmitrijs2005/sforce/logging"
	"github.com/dmitrijs2005/sforce/session"
	"github.com/dmitrijs2005/sforce/transport"
)

// DefaultAPIVersion is the API version used unless WithAPIVersion overrides it.
const DefaultAPIVersion = "42.0"

// Record is a single record map, shared with package bulk.
type Record = bulk.Record

// Client is a Salesforce API client bound to one session. It is safe for
// concurrent use.
type Client struct {
	sessions   *session.Manager
	dispatcher *transport.Dispatcher
	log        logging.Logger
	bulkOpts   bulk.Options
}

type settings struct {
	apiVersion      string
	httpClient      *http.Client
	log             logging.Logger
	provider        session.LoginProvider
	sessionLifetime time.Duration
	bulkOpts        bulk.Options
}

// Option customizes a Client.
type Option func(*settings)

// WithAPIVersion selects the Salesforce API version, e.g. "42.0".
func WithAPIVersion(v string) Option {
	return func(s *settings) { s.apiVersion = v }
}

// WithHTTPClient substitutes the HTTP client used for every call, including
// SOAP logins.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithLogger wires a structured logger; the default discards.
func WithLogger(l logging.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithLoginProvider overrides the default SOAP login provider.
func WithLoginProvider(p session.LoginProvider) Option {
	return func(s *settings) { s.provider = p }
}

// WithSessionLifetime overrides the assumed session validity window of the
// default login provider.
func WithSessionLifetime(d time.Duration) Option {
	return func(s *settings) { s.sessionLifetime = d }
}

// WithBulkOptions sets the defaults for bulk runners created by Bulk.
func WithBulkOptions(o bulk.Options) Option {
	return func(s *settings) { s.bulkOpts = o }
}

func applyOptions(opts []Option) settings {
	s := settings{apiVersion: DefaultAPIVersion}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logging.NewNopLogger()
	}
	return s
}

// New validates the credentials and builds a Client. No network call is made
// until the first API call triggers a login.
func New(creds session.Credentials, opts ...Option) (*Client, error) {
	s := applyOptions(opts)

	provider := s.provider
	if provider == nil {
		soap := session.NewSOAPProvider(s.apiVersion)
		soap.HTTPClient = s.httpClient
		soap.Lifetime = s.sessionLifetime
		provider = soap
	}

	sessions, err := session.NewManager(creds, provider, s.apiVersion, s.log)
	if err != nil {
		return nil, err
	}
	return newClient(sessions, s), nil
}

// NewWithSession builds a Client around a session id acquired out of band
// and the instance host it belongs to, e.g. "na1.salesforce.com".
func NewWithSession(sessionID, instanceHost string, opts ...Option) (*Client, error) {
	s := applyOptions(opts)

	sessions, err := session.NewDirect(sessionID, instanceHost, s.apiVersion, s.log)
	if err != nil {
		return nil, err
	}
	return newClient(sessions, s), nil
}

func newClient(sessions *session.Manager, s settings) *Client {
	return &Client{
		sessions:   sessions,
		dispatcher: transport.NewDispatcher(sessions, s.httpClient, s.log),
		log:        s.log,
		bulkOpts:   s.bulkOpts,
	}
}

// Session returns the current session without renewing it.
func (c *Client) Session() session.Session {
	return c.sessions.Current()
}

// Usage returns the rate-limit consumption reported on the last response
// that carried the Sforce-Limit-Info header. Advisory only.
func (c *Client) Usage() transport.UsageSnapshot {
	return c.dispatcher.Usage()
}

// Bulk returns a bulk-operation runner for the given object type.
func (c *Client) Bulk(object string) *bulk.Runner {
	return bulk.NewRunner(object, c.dispatcher, c.log, c.bulkOpts)
}
