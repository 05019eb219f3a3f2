// Package session owns the authenticated Salesforce session: the token, the
// instance host it was issued for, and its validity window.
//
// # Overview
//
// The package provides:
//  1. Credentials, which select exactly one authentication method from the
//     parameters supplied (password + security token, password + organization
//     id, or consumer key + private key). Ambiguous or empty combinations are
//     rejected before any network call.
//  2. A transport-agnostic LoginProvider contract. Token acquisition itself
//     (SOAP password login, JWT bearer flows) is a collaborator concern;
//     SOAPProvider covers the password-based methods, StaticProvider wraps a
//     pre-acquired session id, and tests inject fakes.
//  3. Manager, which decides when to renew, invokes the provider, and swaps
//     the Session record atomically. A failed renewal leaves the previous
//     session in place and surfaces sferr.ErrAuthenticationFailed.
//
// Concurrency
//
// Manager is safe for concurrent use. Two goroutines racing past an expired
// session may both trigger a renewal; the duplicate login is tolerated and the
// last write wins. Readers never observe a partially updated Session.
package session
