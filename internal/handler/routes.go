package handler

import (
	"net/http"

	"github.com/eakyuz/zikirmatik/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	accounts *service.AccountService,
	counters *service.CounterService,
	loginLimiter *service.TokenBucket,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, loginLimiter, cookieSecure)
	counterHandler := NewCounterHandler(counters)
	adminHandler := NewAdminHandler(accounts)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe)))

	mux.Handle("GET /api/counter", RequireAuth(auth, http.HandlerFunc(counterHandler.HandleGet)))
	mux.Handle("POST /api/counter/decrement", RequireAuth(auth, http.HandlerFunc(counterHandler.HandleDecrement)))
	mux.Handle("POST /api/counter/reset", RequireAuth(auth, http.HandlerFunc(counterHandler.HandleReset)))
	mux.Handle("GET /api/counter/stats", RequireAuth(auth, http.HandlerFunc(counterHandler.HandleStats)))
	mux.Handle("GET /api/counter/share", RequireAuth(auth, http.HandlerFunc(counterHandler.HandleShare)))
	mux.Handle("GET /api/counter/stream", RequireAuth(auth, http.HandlerFunc(counterHandler.HandleStream)))

	mux.Handle("GET /api/admin/accounts", RequireAdmin(auth, http.HandlerFunc(adminHandler.HandleList)))
	mux.Handle("POST /api/admin/accounts", RequireAdmin(auth, http.HandlerFunc(adminHandler.HandleCreate)))
	mux.Handle("GET /api/admin/accounts/check-email", RequireAdmin(auth, http.HandlerFunc(adminHandler.HandleCheckEmail)))
	mux.Handle("PATCH /api/admin/accounts/{id}", RequireAdmin(auth, http.HandlerFunc(adminHandler.HandleRename)))
	mux.Handle("DELETE /api/admin/accounts/{id}", RequireAdmin(auth, http.HandlerFunc(adminHandler.HandleDelete)))
}
