package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/carlosvigna/finhawk-bff/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	tokenKey   contextKey = "token"
	subjectKey contextKey = "subject"
)

// BearerTokenMiddleware requires an Authorization: Bearer header. When the
// verifier is enabled the token must also carry a valid HS256 signature. The
// raw token is stored in the context and forwarded to the FinHawk API.
func BearerTokenMiddleware(verifier *service.TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			tokenString := strings.TrimSpace(parts[1])
			claims, err := verifier.Verify(tokenString)
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, tokenString)
			if claims != nil {
				ctx = context.WithValue(ctx, subjectKey, claims.Subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromContext returns the bearer token accepted by BearerTokenMiddleware.
func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}

// SubjectFromContext returns the verified token subject, or "" when tokens
// are not verified locally.
func SubjectFromContext(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey).(string)
	return v
}
