package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/sforce/logging"
	"github.com/dmitrijs2005/sforce/sferr"
)

// Session is an authenticated token plus the instance host it was issued for
// and its validity window. The zero value means "never authenticated".
// Token and InstanceHost are always set together, from the same login call.
type Session struct {
	Token        string
	InstanceHost string
	ExpiresAt    time.Time
	APIVersion   string
}

// Authenticated reports whether the session ever held a token.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.InstanceHost != ""
}

// LoginResult is what a LoginProvider returns on success.
type LoginResult struct {
	Token        string
	InstanceHost string
	ExpiresIn    time.Duration
}

// LoginProvider acquires a session token for the given method and credentials.
// Implementations must honor context cancellation. A rejection should be (or
// wrap) an sferr authentication error so the root cause reaches the caller.
type LoginProvider interface {
	Login(ctx context.Context, method AuthMethod, creds Credentials) (LoginResult, error)
}

// Manager owns the current Session and renews it through a LoginProvider when
// it is missing or past its expiry. The record is swapped atomically: readers
// either see the previous complete session or the new one, never a mix.
type Manager struct {
	provider   LoginProvider
	method     AuthMethod
	creds      Credentials
	apiVersion string
	log        logging.Logger

	cur atomic.Pointer[Session]

	// now is a test seam.
	now func() time.Time
}

// NewManager validates the credential combination and builds a Manager.
// No network call is made until EnsureFresh.
func NewManager(creds Credentials, provider LoginProvider, apiVersion string, log logging.Logger) (*Manager, error) {
	method, err := creds.Method()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, sferr.Configuration("a login provider is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Manager{
		provider:   provider,
		method:     method,
		creds:      creds,
		apiVersion: apiVersion,
		log:        log,
		now:        time.Now,
	}, nil
}

// NewDirect builds a Manager around a session id acquired out of band,
// together with the instance host it belongs to. Renewals hand back the same
// pair; when the wrapped token itself expires upstream, calls fail with
// ExpiredSession and the retry cannot help, which is the expected behavior
// for direct session access.
func NewDirect(token, instanceHost, apiVersion string, log logging.Logger) (*Manager, error) {
	if token == "" || instanceHost == "" {
		return nil, sferr.Configuration("direct session access requires both a session id and an instance host")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Manager{
		provider:   NewStaticProvider(token, instanceHost),
		method:     AuthDirect,
		apiVersion: apiVersion,
		log:        log,
		now:        time.Now,
	}, nil
}

// Method returns the authentication method selected at construction time.
func (m *Manager) Method() AuthMethod { return m.method }

// Current returns the session as-is, without renewing. The zero value is
// returned before the first successful login.
func (m *Manager) Current() Session {
	if s := m.cur.Load(); s != nil {
		return *s
	}
	return Session{}
}

// EnsureFresh returns the current session, renewing it first when it has
// never been established or its expiry has passed.
func (m *Manager) EnsureFresh(ctx context.Context) (Session, error) {
	if s := m.cur.Load(); s != nil && s.Authenticated() && m.now().Before(s.ExpiresAt) {
		return *s, nil
	}
	return m.Renew(ctx)
}

// Renew unconditionally performs a login and replaces the session record.
// On failure the previous session (even an expired one) stays in place and
// the error surfaces as sferr.ErrAuthenticationFailed.
func (m *Manager) Renew(ctx context.Context) (Session, error) {
	m.log.Debug(ctx, "renewing session", "method", string(m.method))

	res, err := m.provider.Login(ctx, m.method, m.creds)
	if err != nil {
		m.log.Error(ctx, "session renewal failed", "method", string(m.method), "error", err)
		if errors.Is(err, sferr.ErrAuthenticationFailed) {
			return Session{}, err
		}
		return Session{}, sferr.Authentication("", err)
	}

	s := &Session{
		Token:        res.Token,
		InstanceHost: res.InstanceHost,
		APIVersion:   m.apiVersion,
	}
	if res.ExpiresIn > 0 {
		s.ExpiresAt = m.now().Add(res.ExpiresIn)
	}
	m.cur.Store(s)

	m.log.Info(ctx, "session established", "instance", s.InstanceHost, "expires_at", s.ExpiresAt)
	return *s, nil
}
