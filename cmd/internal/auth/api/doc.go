// Package authapi puts an auth strategy in front of an HTTP API.
//
// Gate is net/http middleware: excluded paths pass through, requests with
// neither an Authorization header nor a session cookie get 401, requests
// the strategy cannot identify get 403, and everything else continues with
// the user attached to the request context. GinGate runs the same gate in
// a gin chain.
//
// Handler serves the small JSON API around it: status probes, the current
// user, and session login/logout when the strategy manages sessions.
package authapi
