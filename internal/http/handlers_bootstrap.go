package http

import (
	"net/http"

	applog "finboard/internal/log"
)

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := s.bootstrap.Init(ctx)
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentBootstrap).ErrorContext(ctx, "Database initialization failed",
			applog.NewFields().WithOperation(applog.OpInit).WithError(err, applog.ErrorTypeDatabase).ToSlice()...)
		InternalServerError("database initialization failed: " + err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(result).Write(w)
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := s.bootstrap.Migrate(ctx)
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentMigrate).ErrorContext(ctx, "Database migration failed",
			applog.NewFields().WithOperation(applog.OpMigrate).WithError(err, applog.ErrorTypeDatabase).ToSlice()...)
		NewJSONResponse().
			Status(http.StatusInternalServerError).
			Body(ErrorBody{
				Error:   "database migration failed: " + err.Error(),
				Details: err.Error(),
			}).
			Write(w)
		return
	}
	NewJSONResponse().Body(result).Write(w)
}
