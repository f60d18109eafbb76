package authapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGate runs g inside a gin chain. When the gate answers the request
// itself the rest of the chain is skipped.
func GinGate(g *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		g.Wrap(next).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}
