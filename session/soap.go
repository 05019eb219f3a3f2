package session

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/dmitrijs2005/sforce/sferr"
)

// DefaultSessionLifetime mirrors the platform default session timeout. The
// SOAP login response does not carry an expiry, so the provider assumes this
// lifetime unless configured otherwise.
const DefaultSessionLifetime = 2 * time.Hour

// SOAPProvider performs username/password logins against the partner SOAP
// endpoint. It covers the password and ip-filter methods; jwt-bearer requires
// token signing and therefore a dedicated provider.
type SOAPProvider struct {
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// APIVersion selects the Soap/u endpoint version, e.g. "42.0".
	APIVersion string
	// Lifetime is reported as the session validity window.
	// Zero means DefaultSessionLifetime.
	Lifetime time.Duration
}

// NewSOAPProvider returns a provider for the given API version.
func NewSOAPProvider(apiVersion string) *SOAPProvider {
	return &SOAPProvider{APIVersion: apiVersion}
}

func (p *SOAPProvider) Login(ctx context.Context, method AuthMethod, creds Credentials) (LoginResult, error) {
	loginURL := fmt.Sprintf("https://%s.salesforce.com/services/Soap/u/%s", creds.LoginDomain(), p.APIVersion)

	var envelope string
	switch method {
	case AuthPassword:
		envelope = passwordEnvelope(creds.Username, creds.Password+creds.SecurityToken, creds.ClientID)
	case AuthIPFilter:
		envelope = ipFilterEnvelope(creds.Username, creds.Password, creds.OrganizationID, creds.ClientID)
	default:
		return LoginResult{}, sferr.Configuration("SOAP login does not support the %s method", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewBufferString(envelope))
	if err != nil {
		return LoginResult{}, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", "login")

	hc := p.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return LoginResult{}, sferr.Authentication(loginURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return LoginResult{}, sferr.Authentication(loginURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		code := elementValue(body, "exceptionCode")
		msg := elementValue(body, "exceptionMessage")
		return LoginResult{}, &sferr.Error{
			Kind:       sferr.KindAuthenticationFailed,
			URL:        loginURL,
			StatusCode: resp.StatusCode,
			Content:    fmt.Sprintf("%s: %s", code, msg),
		}
	}

	token := elementValue(body, "sessionId")
	serverURL := elementValue(body, "serverUrl")
	if token == "" || serverURL == "" {
		return LoginResult{}, sferr.Authentication(loginURL, fmt.Errorf("login response is missing sessionId or serverUrl"))
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return LoginResult{}, sferr.Authentication(loginURL, fmt.Errorf("parsing serverUrl %q: %w", serverURL, err))
	}

	lifetime := p.Lifetime
	if lifetime == 0 {
		lifetime = DefaultSessionLifetime
	}
	return LoginResult{Token: token, InstanceHost: u.Host, ExpiresIn: lifetime}, nil
}

const envelopeOpen = `<?xml version="1.0" encoding="utf-8" ?>
<env:Envelope
        xmlns:xsd="http://www.w3.org/2001/XMLSchema"
        xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
        xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"
        xmlns:urn="urn:partner.soap.sforce.com">`

func passwordEnvelope(username, password, clientID string) string {
	return fmt.Sprintf(`%s
    <env:Header>
        <urn:CallOptions>
            <urn:client>%s</urn:client>
            <urn:defaultNamespace>sf</urn:defaultNamespace>
        </urn:CallOptions>
    </env:Header>
    <env:Body>
        <n1:login xmlns:n1="urn:partner.soap.sforce.com">
            <n1:username>%s</n1:username>
            <n1:password>%s</n1:password>
        </n1:login>
    </env:Body>
</env:Envelope>`, envelopeOpen, xmlEscape(clientID), xmlEscape(username), xmlEscape(password))
}

func ipFilterEnvelope(username, password, organizationID, clientID string) string {
	return fmt.Sprintf(`%s
    <env:Header>
        <urn:CallOptions>
            <urn:client>%s</urn:client>
            <urn:defaultNamespace>sf</urn:defaultNamespace>
        </urn:CallOptions>
        <urn:LoginScopeHeader>
            <urn:organizationId>%s</urn:organizationId>
        </urn:LoginScopeHeader>
    </env:Header>
    <env:Body>
        <n1:login xmlns:n1="urn:partner.soap.sforce.com">
            <n1:username>%s</n1:username>
            <n1:password>%s</n1:password>
        </n1:login>
    </env:Body>
</env:Envelope>`, envelopeOpen, xmlEscape(clientID), xmlEscape(organizationID), xmlEscape(username), xmlEscape(password))
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// elementRes holds a precompiled pattern per element pulled out of login
// responses, each tolerating a namespace prefix on the tag.
var elementRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp)
	for _, name := range []string{"sessionId", "serverUrl", "exceptionCode", "exceptionMessage"} {
		res[name] = regexp.MustCompile(fmt.Sprintf(`<(?:\w+:)?%s>([^<]*)</(?:\w+:)?%s>`, name, name))
	}
	return res
}()

// elementValue extracts the text of the first occurrence of the named XML
// element.
func elementValue(body []byte, name string) string {
	re, ok := elementRes[name]
	if !ok {
		return ""
	}
	m := re.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return unescapeXML(string(m[1]))
}

func unescapeXML(s string) string {
	var out struct {
		Value string `xml:",chardata"`
	}
	if err := xml.Unmarshal([]byte("<v>"+s+"</v>"), &out); err != nil {
		return s
	}
	return out.Value
}
