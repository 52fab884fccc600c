package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionResolver resolves the credentials on a request into a session.
type SessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error)
}

// RequireConfig groups parameters for Require.
type RequireConfig struct {
	Resolver SessionResolver
	// LoginPath is the auth endpoint the browser is sent to when no session
	// exists, e.g. "/auth".
	LoginPath string
	Logger    *slog.Logger
}

// Require returns a middleware enforcing a declared requirement expression on
// the wrapped handler. Requests with no session at all are redirected to the
// login flow with the original URL as the post-login target; requests with a
// session lacking privilege get the failure message directly. The distinction
// is made on session presence, never on the failure text.
func Require(checker *domainauth.Checker, cfg RequireConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/auth"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := cfg.Resolver.Resolve(w, r)
			if err != nil {
				writeAuthError(w, r, logger, err)
				return
			}

			if evalErr := checker.Evaluate(sess); evalErr != nil {
				var failed *domainauth.AuthenticationFailed
				if !errors.As(evalErr, &failed) {
					logger.ErrorContext(r.Context(), "requirement evaluation failed", "error", evalErr)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				// No session and no credential material: send the browser
				// through the login flow and back here afterwards.
				if sess == nil && r.Header.Get("Authorization") == "" {
					target := loginPath + "?login=" + url.QueryEscape(r.URL.RequestURI())
					http.Redirect(w, r, target, http.StatusFound)
					return
				}
				WriteText(w, failed.Status, failed.Message+"\n")
				return
			}

			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
		})
	}
}

// OptionalAuth resolves a session when present and stores it in the request
// context without enforcing anything.
func OptionalAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, err := resolver.Resolve(w, r); err == nil && sess != nil {
				r = r.WithContext(SetSessionInContext(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}
