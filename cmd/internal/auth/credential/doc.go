// Package credential pulls raw credentials off an HTTP request and turns a
// Basic authorization header into a verified user.
//
// Every stage returns (value, ok). A malformed input at any stage yields
// ok == false; nothing here panics or returns an error to the caller.
package credential
