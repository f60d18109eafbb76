package credential

import "net/http"

// HeaderAuthorization is the header Basic credentials travel in.
const HeaderAuthorization = "Authorization"

// AuthorizationHeader returns the raw Authorization header value.
func AuthorizationHeader(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Header[http.CanonicalHeaderKey(HeaderAuthorization)]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// SessionCookie returns the value of the cookie called name.
func SessionCookie(r *http.Request, name string) (string, bool) {
	if r == nil || name == "" {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}
