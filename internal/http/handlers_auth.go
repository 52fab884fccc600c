package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
	"github.com/opencommons/gatehouse/internal/service"
)

// AuthServiceInterface defines the auth service operations the endpoint needs.
type AuthServiceInterface interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error)
	BeginLogin(r *http.Request, returnTo string) (*service.BeginLoginResult, error)
	CompleteLogin(w http.ResponseWriter, r *http.Request, code, state string) (*service.CompleteLoginResult, error)
	Logout(w http.ResponseWriter, r *http.Request)
	WorkflowTimeout() time.Duration
}

// AuthHandlers serves the single query-parameter-driven auth endpoint:
//
//	GET /auth?login[=/path]   initiate the OAuth handshake
//	GET /auth?logout[=/path]  clear the session
//	GET /auth?code=c&state=s  complete the handshake (provider callback)
//	GET /auth                 show the current session, 404 if none
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Endpoint dispatches on the query parameters of the auth endpoint.
func (h *AuthHandlers) Endpoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Has("login"):
		h.login(w, r, q.Get("login"))
	case q.Has("logout"):
		h.logout(w, r, q.Get("logout"))
	case q.Get("code") != "" && q.Get("state") != "":
		h.callback(w, r, q.Get("code"), q.Get("state"))
	default:
		h.status(w, r)
	}
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request, returnTo string) {
	result, err := h.Svc.BeginLogin(r, returnTo)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidRedirect) {
			WriteText(w, http.StatusBadRequest, "Invalid redirect URI provided.\n")
			return
		}
		h.logger().ErrorContext(r.Context(), "login initiation failed", "error", err)
		WriteText(w, http.StatusInternalServerError, "Could not initiate login, please try again later.\n")
		return
	}
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request, returnTo string) {
	if returnTo != "" {
		if _, err := domainauth.ValidateRedirect(returnTo); err != nil {
			WriteText(w, http.StatusBadRequest, "Invalid redirect URI provided.\n")
			return
		}
	}
	h.Svc.Logout(w, r)
	if returnTo != "" {
		http.Redirect(w, r, returnTo, http.StatusFound)
		return
	}
	WriteText(w, http.StatusOK, "Client session removed, goodbye!\n")
}

func (h *AuthHandlers) callback(w http.ResponseWriter, r *http.Request, code, state string) {
	result, err := h.Svc.CompleteLogin(w, r, code, state)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidState) {
			WriteText(w, http.StatusForbidden, fmt.Sprintf(
				"Invalid or expired OAuth state provided. OAuth workflows must be completed within %d seconds.\n",
				int(h.Svc.WorkflowTimeout().Seconds())))
			return
		}
		h.logger().ErrorContext(r.Context(), "login completion failed", "error", err)
		WriteText(w, http.StatusInternalServerError, "Could not verify OAuth response.\n")
		return
	}
	// The returnTo target was validated at initiation time.
	if result.ReturnTo != "" {
		http.Redirect(w, r, result.ReturnTo, http.StatusFound)
		return
	}
	WriteText(w, http.StatusOK, fmt.Sprintf("Successfully logged in! Welcome, %s\n", result.Session.UID))
}

func (h *AuthHandlers) status(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Svc.Resolve(w, r)
	if err != nil {
		writeAuthError(w, r, h.logger(), err)
		return
	}
	if sess == nil {
		WriteText(w, http.StatusNotFound, "No active session found.\n")
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}

// writeAuthError maps credential resolution failures onto responses, keeping
// backend detail in the logs and out of the body.
func writeAuthError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var pe *domainauth.ProtocolError
	if errors.As(err, &pe) {
		if pe.Status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "credential resolution failed", "error", errors.Unwrap(pe))
		}
		WriteText(w, pe.Status, pe.Message+"\n")
		return
	}
	logger.ErrorContext(r.Context(), "credential resolution failed", "error", err)
	WriteText(w, http.StatusInternalServerError, "Authentication failed, please try again later.\n")
}
