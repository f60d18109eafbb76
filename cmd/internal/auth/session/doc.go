// Package session issues, resolves and destroys server-side sessions.
//
// A session is an opaque random ID mapped to a user ID and a creation time.
// Storage is a Backend; behavior is layered by wrapping one Backend in
// another. MemoryStore keeps records in process, Persistent delegates to a
// durable Persistence (Postgres, SQLite or Redis), and Expiring adds a TTL
// check on top of either.
//
// Expiration is lazy: an expired record stays in storage until it is
// destroyed. There is no background sweeper.
package session
