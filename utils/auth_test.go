package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestTemporaryPasswordHashes(t *testing.T) {
	pw, err := GenerateTemporaryPassword(10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(pw) != 10 {
		t.Fatalf("expected 10 chars, got %d", len(pw))
	}
	hash, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash(pw, hash) || CheckPasswordHash("wrong", hash) {
		t.Fatalf("hash check mismatch")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware("secret"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("salonId"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	token, err := GenerateToken("u1", "s1", "owner", "secret", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "s1" {
		t.Fatalf("expected 200/s1, got %d/%s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set("role", c.Query("role"))
		c.Next()
	}, RequireRole("owner", "manager"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, want := range map[string]int{
		"owner":        http.StatusNoContent,
		"manager":      http.StatusNoContent,
		"professional": http.StatusForbidden,
		"":             http.StatusForbidden,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role="+role, nil))
		if w.Code != want {
			t.Fatalf("role %q: expected %d, got %d", role, want, w.Code)
		}
	}
}
