package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// Claims is the JWT payload issued by the authentication frontend. Subject
// identifies the account; plan and profile fields are carried along so the
// backend can provision users lazily.
type Claims struct {
	Plan   string `json:"plan,omitempty"`
	Locale string `json:"locale,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth verifies the bearer token and attaches the matching user to the
// request context, creating the user row on first sight of a subject.
func JWTAuth(secret string, users domain.UserRepository, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				logger.Debug().Err(err).Msg("rejected bearer token")
				unauthorized(w)
				return
			}

			// Only a recognized plan claim is forwarded. Empty leaves the
			// stored plan untouched, so tokens without the claim cannot
			// downgrade an account upgraded through the admin tooling.
			var plan domain.UserPlan
			switch {
			case strings.EqualFold(claims.Plan, string(domain.UserPlanPaid)):
				plan = domain.UserPlanPaid
			case strings.EqualFold(claims.Plan, string(domain.UserPlanFree)):
				plan = domain.UserPlanFree
			}
			user, err := users.UpsertBySubject(r.Context(), &domain.User{
				Subject: claims.Subject,
				Email:   claims.Email,
				Name:    claims.Name,
				Plan:    plan,
			})
			if err != nil {
				logger.Error().Err(err).Str("subject", claims.Subject).Msg("cannot load user")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			if claims.Locale != "" {
				ctx = ContextWithLocale(ctx, claims.Locale)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithUser attaches a user to the context.
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil outside the auth
// middleware.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// SignToken issues a token the JWTAuth middleware accepts. Used by admin
// tooling and tests.
func SignToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"authentication required"}`))
}
