package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dcode-github/listing_analytics/controllers"
	"github.com/dcode-github/listing_analytics/utils"
	"github.com/rs/zerolog/log"
)

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + msg + `"}` + "\n"))
}

// AuthMiddleware requires a valid Bearer token and puts its user id in the
// request context under controllers.UserIDKey.
func AuthMiddleware(tokens *utils.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenHeader := r.Header.Get("Authorization")
			if tokenHeader == "" {
				log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("Missing Authorization header")
				unauthorized(w, "Missing Authorization header")
				return
			}

			tokenParts := strings.Split(tokenHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("Invalid Authorization header format")
				unauthorized(w, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.Validate(tokenParts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Invalid or expired token")
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), controllers.UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
