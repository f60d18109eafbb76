// Package identity holds the user records that authentication resolves to.
//
// Users are owned outside the auth engine. This package only exposes the
// read capabilities the engine consumes (lookup by email, lookup by ID) and
// a few adapters over them: an in-memory store for development and tests,
// a read-only Postgres store, and a bigcache front for ID lookups.
package identity
