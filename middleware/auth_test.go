package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timeledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	user := &models.User{
		ID:       42,
		Username: "alice",
		Role:     models.RoleWorker,
	}

	token, err := GenerateToken(user, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleWorker, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	SetJWTSecret("test-secret")

	user := &models.User{Username: "alice", Role: models.RoleWorker}
	token, err := GenerateToken(user, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestTamperedSecretRejected(t *testing.T) {
	SetJWTSecret("test-secret")
	user := &models.User{Username: "alice", Role: models.RoleWorker}
	token, err := GenerateToken(user, time.Hour)
	require.NoError(t, err)

	SetJWTSecret("other-secret")
	_, err = ValidateToken(token)
	require.Error(t, err)
	SetJWTSecret("test-secret")
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := RequireRole(models.RoleAdmin, models.RoleApprover)(next)

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"admin passes", &models.User{Role: models.RoleAdmin}, http.StatusOK},
		{"approver passes", &models.User{Role: models.RoleApprover}, http.StatusOK},
		{"worker forbidden", &models.User{Role: models.RoleWorker}, http.StatusForbidden},
		{"anonymous unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/audit", nil)
			if tt.user != nil {
				ctx := context.WithValue(req.Context(), UserContextKey, tt.user)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/shift/clock-in", nil)
	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	// An inbound id is preserved.
	req = httptest.NewRequest(http.MethodPost, "/shift/clock-in", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	rec = httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", seen)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4455"
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.3, 10.0.0.1")
	assert.Equal(t, "198.51.100.3", ClientIP(req))
}
