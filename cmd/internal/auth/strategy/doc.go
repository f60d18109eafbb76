// Package strategy implements the authentication strategies a request gate
// can be configured with.
//
// Base only decides which paths need authentication and pulls raw
// credentials off the request; it never identifies anyone. Basic resolves
// the user from an Authorization: Basic header. Session resolves it from a
// session cookie through a session.Backend, with optional expiry and
// optional durable storage.
package strategy
