package authapi

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"warden/cmd/internal/auth/credential"
	"warden/cmd/internal/auth/strategy"
)

func TestGinGate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := strategy.NewBasic(strategy.NewBase(DefaultExcludedPaths, cookieName), testUsers(t), plainVerify)
	var calls atomic.Int32

	r := gin.New()
	r.Use(GinGate(NewGate(testLogger(), s, nil)))
	r.GET("/api/v1/users/me", func(c *gin.Context) {
		calls.Add(1)
		u, ok := UserFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": u.Email})
	})
	r.GET("/api/v1/status", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	apitest.New().
		Handler(r).
		Get("/api/v1/users/me").
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"error":"Unauthorized"}`).
		End()

	apitest.New().
		Handler(r).
		Get("/api/v1/users/me").
		Header("Authorization", credential.EncodeBasic("bob@example.com", "wrong")).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	if n := calls.Load(); n != 0 {
		t.Fatalf("handler must not run for rejected requests, ran %d times", n)
	}

	apitest.New().
		Handler(r).
		Get("/api/v1/users/me").
		Header("Authorization", credential.EncodeBasic("bob@example.com", "secret")).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.email", "bob@example.com")).
		End()

	apitest.New().
		Handler(r).
		Get("/api/v1/status").
		Expect(t).
		Status(http.StatusOK).
		End()

	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 handler calls, got %d", n)
	}
}
