// Package transport issues authenticated HTTP calls against the Salesforce
// REST, Bulk, Tooling, Apex and Metadata endpoint families.
//
// The Dispatcher refreshes the session before every call, merges caller
// headers over the defaults, classifies non-2xx responses through sferr, and
// transparently renews-and-replays a request exactly once when the server
// reports an expired session. Rate-limit usage reported via the
// Sforce-Limit-Info header is captured on every response and exposed through
// Usage; observation only, nothing is enforced.
package transport
