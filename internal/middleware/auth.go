package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"hr-approvals/internal/domain"
)

// Authenticator resolves the bearer token of each request into a
// domain.Principal. Validators are tried in order; the first that accepts the
// token wins.
type Authenticator struct {
	validators []JWTValidator
	claims     ClaimNames
	logger     *slog.Logger
}

// NewAuthenticator creates an Authenticator. At least one validator is needed
// for any request to pass.
func NewAuthenticator(claims ClaimNames, logger *slog.Logger, validators ...JWTValidator) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		validators: validators,
		claims:     claims.withDefaults(),
		logger:     logger.With("component", "auth"),
	}
}

// Middleware returns 401 unless the request carries a valid bearer token whose
// claims build a principal. The principal is stored with domain.WithPrincipal.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeUnauthorized(w, "missing bearer token")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		var lastErr error
		for _, v := range a.validators {
			claims, err := v.Validate(r.Context(), token)
			if err != nil {
				lastErr = err
				continue
			}
			p, err := PrincipalFromClaims(claims, a.claims)
			if err != nil {
				lastErr = err
				break
			}
			ctx := domain.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if lastErr != nil {
			a.logger.Warn("authentication failed",
				"request_id", RequestIDFromContext(r.Context()),
				"error", lastErr)
		}
		writeUnauthorized(w, "invalid bearer token")
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="hr-approvals"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    "UNAUTHENTICATED",
		"message": "unauthorized: " + msg,
	})
}
