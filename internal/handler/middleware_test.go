package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBearerTokenMiddleware_SubjectReachesDashboardRequest(t *testing.T) {
	claims := service.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	var got service.DashboardRequest
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err = dashboardRequest(r, nil)
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	})
	mw := BearerTokenMiddleware(service.NewTokenVerifier("s3cret"), zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts/7/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, token, got.Token)
	assert.Equal(t, "user-42", got.Subject)
}

func TestBearerTokenMiddleware_NoSubjectWhenUnverified(t *testing.T) {
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		assert.Equal(t, "opaque", TokenFromContext(r.Context()))
	})
	mw := BearerTokenMiddleware(service.NewTokenVerifier(""), zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer opaque")
	mw.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, subject)
}
