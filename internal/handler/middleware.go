package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/eakyuz/zikirmatik/internal/service"
)

type contextKey string

const accountContextKey contextKey = "account"

// AccountFromContext extracts the authenticated account from the request
// context. Returns nil if no account is authenticated.
func AccountFromContext(ctx context.Context) *domain.Account {
	account, _ := ctx.Value(accountContextKey).(*domain.Account)
	return account
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads the auth_token cookie, validates the JWT, loads the account from
// the profile store, and injects it into the request context. A missing or
// soft-deleted account fails authentication even with a valid token, so a
// deletion takes effect mid-session.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := authenticateRequest(r, auth)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin layers an admin role check on top of RequireAuth.
func RequireAdmin(auth *service.AuthService, next http.Handler) http.Handler {
	return RequireAuth(auth, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := AccountFromContext(r.Context())
		if account == nil || !account.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func authenticateRequest(r *http.Request, auth *service.AuthService) (*domain.Account, error) {
	cookie, err := r.Cookie("auth_token")
	if err != nil {
		return nil, err
	}

	accountID, err := auth.ValidateToken(cookie.Value)
	if err != nil {
		return nil, err
	}

	account, err := auth.GetAccountByID(r.Context(), accountID)
	if err != nil {
		return nil, err
	}
	if account.Deleted {
		return nil, domain.ErrUnauthorized
	}

	return account, nil
}

// SecurityHeaders sets baseline security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code and
// the number of bytes written for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Flush passes through to the wrapped writer so streaming responses (the
// counter SSE stream) keep working behind the logger.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger logs each completed request with structured fields.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Info("request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)),
			slog.Int64("bytes", wrapped.written),
		)
	})
}
