package http

import (
	"errors"
	"net/http"

	"finboard/internal/auth"
	applog "finboard/internal/log"
)

const (
	msgLoginSuccessful = "login successful"
	msgTokenValid      = "token valid"
)

// handleLogin exchanges the admin password for the admin token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentAuth)

	var req loginRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		BadRequestError(errInvalidBody.Error()).Write(w)
		return
	}

	var (
		token string
		err   error
	)
	switch password, isString, present := req.credential(); {
	case !present:
		err = auth.ErrMissingPassword
	case !isString:
		err = auth.ErrInvalidPassword
	default:
		token, err = s.guard.Login(password)
	}
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrMissingPassword) {
			status = http.StatusBadRequest
		}
		logger.WarnContext(ctx, "Admin login rejected",
			applog.NewFields().
				WithOperation(applog.OpLogin).
				WithError(err, applog.ErrorTypeAuth).
				ToSlice()...)
		ErrorResponse(status, authMessage(err)).Write(w)
		return
	}

	logger.InfoContext(ctx, "Admin login succeeded", applog.FieldOperation, applog.OpLogin)
	NewJSONResponse().
		Body(StatusBody{Success: true, Token: token, Message: msgLoginSuccessful}).
		Write(w)
}

// handleCheckToken confirms that the presented token is still valid.
func (s *Server) handleCheckToken(w http.ResponseWriter, r *http.Request) {
	if err := s.guard.CheckToken(adminToken(r)); err != nil {
		UnauthorizedError(authMessage(err)).Write(w)
		return
	}
	SuccessResponse(msgTokenValid).Write(w)
}
