package session

import (
	"context"
	"time"
)

// StaticProvider wraps a session id acquired out of band (for example via the
// CLI tooling or an org's own OAuth integration) together with the instance
// host it belongs to. Every Login call hands back the same pair.
type StaticProvider struct {
	Token        string
	InstanceHost string
	// Lifetime reported to the Manager. Zero means DefaultSessionLifetime.
	Lifetime time.Duration
}

// NewStaticProvider builds a provider around a pre-acquired token.
func NewStaticProvider(token, instanceHost string) *StaticProvider {
	return &StaticProvider{Token: token, InstanceHost: instanceHost}
}

func (p *StaticProvider) Login(ctx context.Context, method AuthMethod, creds Credentials) (LoginResult, error) {
	lifetime := p.Lifetime
	if lifetime == 0 {
		lifetime = DefaultSessionLifetime
	}
	return LoginResult{Token: p.Token, InstanceHost: p.InstanceHost, ExpiresIn: lifetime}, nil
}
