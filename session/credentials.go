package session

import "github.com/dmitrijs2005/sforce/sferr"

// AuthMethod is the authentication flow selected by a Credentials value.
type AuthMethod string

const (
	// AuthPassword is username + password + security token.
	AuthPassword AuthMethod = "password"
	// AuthIPFilter is username + password + organization id, for orgs with
	// IP-filtering enabled instead of security tokens.
	AuthIPFilter AuthMethod = "ip-filter"
	// AuthJWTBearer is username + consumer key + private key. The key is only
	// carried here; signing is a LoginProvider concern.
	AuthJWTBearer AuthMethod = "jwt-bearer"
	// AuthDirect marks a session id acquired out of band. It is never selected
	// by Credentials.Method; see NewDirect.
	AuthDirect AuthMethod = "direct"
)

// Credentials carries every parameter a login flow may need. Which fields are
// required depends on the method; Method reports which single flow the
// populated fields select.
type Credentials struct {
	Username       string
	Password       string
	SecurityToken  string
	OrganizationID string
	ConsumerKey    string
	PrivateKey     []byte

	// Domain is the login domain, e.g. "login", "test" or a My Domain name.
	// Empty means "login".
	Domain string
	// ClientID is an optional call-options client id sent with login requests.
	ClientID string
}

// Method determines the single authentication method the populated fields
// select. Supplying fields for none, or for more than one, method is a
// configuration error: failing fast here keeps the ambiguity from surfacing
// as a confusing login rejection later.
func (c Credentials) Method() (AuthMethod, error) {
	var methods []AuthMethod

	if c.Username != "" && c.Password != "" && c.SecurityToken != "" {
		methods = append(methods, AuthPassword)
	}
	if c.Username != "" && c.Password != "" && c.OrganizationID != "" {
		methods = append(methods, AuthIPFilter)
	}
	if c.Username != "" && c.ConsumerKey != "" && len(c.PrivateKey) > 0 {
		methods = append(methods, AuthJWTBearer)
	}

	switch len(methods) {
	case 0:
		return "", sferr.Configuration("credentials select no authentication method: provide username/password plus a security token or an organization id, or a consumer key plus a private key")
	case 1:
		return methods[0], nil
	default:
		return "", sferr.Configuration("credentials are ambiguous: they match %d authentication methods %v", len(methods), methods)
	}
}

// LoginDomain returns the effective login domain.
func (c Credentials) LoginDomain() string {
	if c.Domain == "" {
		return "login"
	}
	return c.Domain
}
