// Package pathguard decides whether a request path is exempt from authentication.
//
// Exclusion patterns are either exact paths or prefixes ending in a single
// trailing '*'. Trailing slashes are ignored on both sides, so "/status" and
// "/status/" are the same path. A '*' that is not the last character is a
// literal.
//
// An empty path or an empty exclusion set always requires authentication.
package pathguard

import "strings"

// Wildcard is the trailing marker that turns a pattern into a prefix match.
const Wildcard = "*"

// RequiresAuth reports whether path must be authenticated given the excluded patterns.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}

	p := normalize(path)
	for _, e := range excluded {
		if matches(p, compile(e)) {
			return false
		}
	}
	return true
}

// Guard holds a pre-normalized exclusion set. It is immutable after New
// and safe for concurrent use.
type Guard struct {
	patterns []pattern
}

// New builds a Guard from exclusion patterns. Empty patterns are ignored.
func New(excluded ...string) *Guard {
	g := &Guard{patterns: make([]pattern, 0, len(excluded))}
	for _, e := range excluded {
		if strings.TrimSpace(e) == "" {
			continue
		}
		g.patterns = append(g.patterns, compile(e))
	}
	return g
}

// RequiresAuth reports whether path must be authenticated.
func (g *Guard) RequiresAuth(path string) bool {
	if g == nil || path == "" || len(g.patterns) == 0 {
		return true
	}

	p := normalize(path)
	for _, pat := range g.patterns {
		if matches(p, pat) {
			return false
		}
	}
	return true
}

// Patterns returns the normalized patterns in their original order.
func (g *Guard) Patterns() []string {
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.patterns))
	for _, p := range g.patterns {
		if p.prefix {
			out = append(out, p.value+Wildcard)
			continue
		}
		out = append(out, p.value)
	}
	return out
}

type pattern struct {
	value  string
	prefix bool
}

func compile(raw string) pattern {
	n := normalize(raw)
	if strings.HasSuffix(n, Wildcard) {
		return pattern{value: strings.TrimSuffix(n, Wildcard), prefix: true}
	}
	return pattern{value: n}
}

func matches(path string, p pattern) bool {
	if p.prefix {
		return strings.HasPrefix(path, p.value)
	}
	return path == p.value
}

func normalize(s string) string {
	return strings.TrimRight(s, "/")
}
