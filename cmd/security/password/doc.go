// Package password hashes and verifies user passwords.
//
// Two encodings are understood: Argon2id in PHC form
// ($argon2id$v=19$m=..,t=..,p=..$salt$key) and bcrypt ($2a$, $2b$, $2y$).
// Verify picks the scheme from the hash prefix, so stores may hold a mix.
//
// Hash strings are untrusted input. Malformed hashes, and Argon2id hashes
// whose cost parameters far exceed the configured ones, never match.
package password
