package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserKey contextKey = "user"

// public paths never require credentials
var publicPaths = []string{"/health", "/healthz", "/readyz", "/metrics"}

func isPublic(path string) bool {
	if path == "/" || strings.HasPrefix(path, "/static/") {
		return true
	}
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// Auth accepts either a static API key or an HS256 JWT in the
// Authorization header. With no keys and no secret configured it lets
// every request through anonymously.
func Auth(apiKeys map[string]string, jwtSecret string) func(http.Handler) http.Handler {
	enabled := len(apiKeys) > 0 || jwtSecret != ""

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeDetail(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeDetail(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			var user string
			if jwtSecret != "" && strings.Count(token, ".") == 2 {
				sub, err := verifyJWT(token, jwtSecret)
				if err != nil {
					writeDetail(w, http.StatusUnauthorized, err.Error())
					return
				}
				user = sub
			} else {
				var ok bool
				if user, ok = matchAPIKey(token, apiKeys); !ok {
					writeDetail(w, http.StatusUnauthorized, "invalid API key")
					return
				}
			}

			if err := ValidateUserID(user); err != nil {
				writeDetail(w, http.StatusUnauthorized, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// constant-time comparison against every configured key
func matchAPIKey(token string, keys map[string]string) (string, bool) {
	var user string
	found := false
	for u, key := range keys {
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
			user, found = u, true
		}
	}
	return user, found
}

func verifyJWT(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("invalid JWT: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("JWT missing sub claim")
	}
	return sub, nil
}

// UserFromContext returns the authenticated user id, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *string {
	if u, ok := ctx.Value(UserKey).(string); ok && u != "" {
		return &u
	}
	return nil
}

func writeDetail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
