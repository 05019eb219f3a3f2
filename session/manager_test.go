package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sforce/sferr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake provider
 *************/

type fakeProvider struct {
	mu sync.Mutex

	// inputs captured
	calls      int
	lastMethod AuthMethod

	// outputs preset
	result LoginResult
	err    error
}

func (f *fakeProvider) Login(ctx context.Context, method AuthMethod, creds Credentials) (LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMethod = method
	return f.result, f.err
}

func (f *fakeProvider) loginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func passwordCreds() Credentials {
	return Credentials{Username: "u@example.com", Password: "pw", SecurityToken: "tok"}
}

func TestNewManager_RejectsBadCredentialCombination(t *testing.T) {
	_, err := NewManager(Credentials{Username: "u@example.com"}, &fakeProvider{}, "42.0", nil)
	require.ErrorIs(t, err, sferr.ErrConfiguration)
}

func TestNewManager_RequiresProvider(t *testing.T) {
	_, err := NewManager(passwordCreds(), nil, "42.0", nil)
	require.ErrorIs(t, err, sferr.ErrConfiguration)
}

func TestEnsureFresh_LogsInOnFirstUse(t *testing.T) {
	f := &fakeProvider{result: LoginResult{Token: "T1", InstanceHost: "na1.salesforce.com", ExpiresIn: time.Hour}}
	m, err := NewManager(passwordCreds(), f, "42.0", nil)
	require.NoError(t, err)

	require.False(t, m.Current().Authenticated())

	s, err := m.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T1", s.Token)
	assert.Equal(t, "na1.salesforce.com", s.InstanceHost)
	assert.Equal(t, "42.0", s.APIVersion)
	assert.Equal(t, AuthPassword, f.lastMethod)
	assert.Equal(t, 1, f.loginCalls())
}

func TestEnsureFresh_ReusesUnexpiredSession(t *testing.T) {
	f := &fakeProvider{result: LoginResult{Token: "T1", InstanceHost: "na1.salesforce.com", ExpiresIn: time.Hour}}
	m, err := NewManager(passwordCreds(), f, "42.0", nil)
	require.NoError(t, err)

	_, err = m.EnsureFresh(context.Background())
	require.NoError(t, err)
	_, err = m.EnsureFresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.loginCalls())
}

func TestEnsureFresh_RenewsAfterExpiry(t *testing.T) {
	f := &fakeProvider{result: LoginResult{Token: "T1", InstanceHost: "na1.salesforce.com", ExpiresIn: time.Hour}}
	m, err := NewManager(passwordCreds(), f, "42.0", nil)
	require.NoError(t, err)

	now := time.Now()
	m.now = func() time.Time { return now }

	_, err = m.EnsureFresh(context.Background())
	require.NoError(t, err)

	// Jump past the expiry.
	m.now = func() time.Time { return now.Add(2 * time.Hour) }

	f.result = LoginResult{Token: "T2", InstanceHost: "na1.salesforce.com", ExpiresIn: time.Hour}
	s, err := m.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T2", s.Token)
	assert.Equal(t, 2, f.loginCalls())
}

func TestRenew_FailureKeepsPreviousSession(t *testing.T) {
	f := &fakeProvider{result: LoginResult{Token: "T1", InstanceHost: "na1.salesforce.com", ExpiresIn: time.Hour}}
	m, err := NewManager(passwordCreds(), f, "42.0", nil)
	require.NoError(t, err)

	_, err = m.EnsureFresh(context.Background())
	require.NoError(t, err)

	f.err = errors.New("invalid password")
	_, err = m.Renew(context.Background())
	require.ErrorIs(t, err, sferr.ErrAuthenticationFailed)

	// The old record survives the failed renewal.
	assert.Equal(t, "T1", m.Current().Token)
}

func TestRenew_PassesThroughClassifiedAuthError(t *testing.T) {
	authErr := sferr.Authentication("https://login.salesforce.com", errors.New("INVALID_LOGIN"))
	f := &fakeProvider{err: authErr}
	m, err := NewManager(passwordCreds(), f, "42.0", nil)
	require.NoError(t, err)

	_, err = m.EnsureFresh(context.Background())
	require.ErrorIs(t, err, sferr.ErrAuthenticationFailed)

	var e *sferr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "https://login.salesforce.com", e.URL)
}

func TestEnsureFresh_ConcurrentRenewalsTolerated(t *testing.T) {
	f := &fakeProvider{result: LoginResult{Token: "T1", InstanceHost: "na1.salesforce.com", ExpiresIn: time.Hour}}
	m, err := NewManager(passwordCreds(), f, "42.0", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.EnsureFresh(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "T1", s.Token)
		}()
	}
	wg.Wait()

	// Redundant renewals are allowed, a torn session record is not.
	assert.Equal(t, "T1", m.Current().Token)
	assert.Equal(t, "na1.salesforce.com", m.Current().InstanceHost)
}

func TestNewDirect(t *testing.T) {
	m, err := NewDirect("T9", "na9.salesforce.com", "42.0", nil)
	require.NoError(t, err)
	assert.Equal(t, AuthDirect, m.Method())

	s, err := m.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T9", s.Token)
	assert.Equal(t, "na9.salesforce.com", s.InstanceHost)

	_, err = NewDirect("", "na9.salesforce.com", "42.0", nil)
	require.ErrorIs(t, err, sferr.ErrConfiguration)
}
