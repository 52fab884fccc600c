package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
	"github.com/opencommons/gatehouse/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth   *service.AuthService
	Logger *slog.Logger
}

// NewRouter creates and configures a new HTTP router. The auth endpoint is
// registered at the configured path and handles the login, logout and OAuth
// callback legs of the workflow plus the session status probe.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth, Logger: services.Logger}
	mux.Handle("GET "+services.Auth.EndpointPath(), http.HandlerFunc(authHandlers.Endpoint))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

// Protect wraps a handler with a requirement expression enforced against the
// request's resolved session. The session ends up in the request context for
// the handler to read via SessionFromContext.
func Protect(services RouterServices, expr domainauth.Expression, next http.Handler) http.Handler {
	checker := domainauth.MustDeclare(expr)
	mw := Require(checker, RequireConfig{
		Resolver:  services.Auth,
		LoginPath: services.Auth.EndpointPath(),
		Logger:    services.Logger,
	})
	return mw(next)
}
