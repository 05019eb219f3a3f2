// Package sferr defines the closed error taxonomy for Salesforce API calls
// and the classifier that maps HTTP status codes onto it.
//
// Every produced *Error carries the request URL, the HTTP status code, the
// name of the collaborating object or job (when known), and the decoded
// response body, so callers can diagnose a failing call without re-running it.
// Callers match kinds with errors.Is against the exported sentinels.
package sferr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors, one per taxonomy kind. Match with errors.Is.
var (
	ErrMoreThanOneRecord    = errors.New("more than one record for id")
	ErrMalformedRequest     = errors.New("malformed request")
	ErrExpiredSession       = errors.New("expired session")
	ErrRefusedRequest       = errors.New("request refused")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrGeneral              = errors.New("general api error")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrConfiguration        = errors.New("invalid configuration")
)

// Kind identifies one member of the error taxonomy.
type Kind int

const (
	KindGeneral Kind = iota
	KindMoreThanOneRecord
	KindMalformedRequest
	KindExpiredSession
	KindRefusedRequest
	KindResourceNotFound
	KindAuthenticationFailed
	KindConfiguration
)

// sentinel returns the errors.Is target for the kind.
func (k Kind) sentinel() error {
	switch k {
	case KindMoreThanOneRecord:
		return ErrMoreThanOneRecord
	case KindMalformedRequest:
		return ErrMalformedRequest
	case KindExpiredSession:
		return ErrExpiredSession
	case KindRefusedRequest:
		return ErrRefusedRequest
	case KindResourceNotFound:
		return ErrResourceNotFound
	case KindAuthenticationFailed:
		return ErrAuthenticationFailed
	case KindConfiguration:
		return ErrConfiguration
	default:
		return ErrGeneral
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// Error is the shared payload for every taxonomy kind.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int
	// Name is the collaborating object or job name, if the caller knew it.
	Name string
	// Content is the decoded JSON response body, or the raw body as a string
	// when it is not valid JSON.
	Content any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v", e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Name != "" {
		msg = fmt.Sprintf("%s for %s", msg, e.Name)
	}
	if e.URL != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.URL)
	}
	if e.Content != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Content)
	}
	return msg
}

// Is lets errors.Is match an *Error against the kind sentinels.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Classify maps an HTTP status code and response body onto the taxonomy.
// The body is decoded as JSON when possible, otherwise kept as raw text.
// Statuses below 300 are a programming error on the caller's side and still
// yield a GeneralError carrying the status.
func Classify(statusCode int, body []byte, url, name string) *Error {
	kind := KindGeneral
	switch statusCode {
	case 300:
		kind = KindMoreThanOneRecord
	case 400:
		kind = KindMalformedRequest
	case 401:
		kind = KindExpiredSession
	case 403:
		kind = KindRefusedRequest
	case 404:
		kind = KindResourceNotFound
	}
	return &Error{
		Kind:       kind,
		URL:        url,
		StatusCode: statusCode,
		Name:       name,
		Content:    decodeContent(body),
	}
}

// Authentication wraps a login failure. The cause is preserved in Content
// so the root reason stays visible to the caller.
func Authentication(url string, cause error) *Error {
	e := &Error{Kind: KindAuthenticationFailed, URL: url}
	if cause != nil {
		e.Content = cause.Error()
	}
	return e
}

// Configuration reports an invalid or ambiguous client configuration,
// detected before any network call is made.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Content: fmt.Sprintf(format, args...)}
}

func decodeContent(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}
