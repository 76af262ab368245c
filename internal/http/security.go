package http

import (
	"errors"
	"net/http"

	"finboard/internal/auth"
	applog "finboard/internal/log"
)

// adminToken returns the token presented on r, if any.
func adminToken(r *http.Request) string {
	return r.Header.Get(auth.HeaderAdminToken)
}

// requireAdmin rejects requests without a valid admin token with 401.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.guard.CheckToken(adminToken(r)); err != nil {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).WarnContext(r.Context(),
				"Admin access denied",
				applog.FieldPath, r.URL.Path,
				applog.FieldMethod, r.Method,
				applog.FieldError, err.Error())
			UnauthorizedError(authMessage(err)).Write(w)
			return
		}
		next(w, r)
	}
}

// authMessage maps guard errors to their client-facing text.
func authMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingPassword),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return err.Error()
	default:
		return "unauthorized"
	}
}
