package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finboard/internal/auth"
	"finboard/internal/bootstrap"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"

	"github.com/gorilla/mux"
)

// RecordService is the record access the handlers need.
type RecordService interface {
	List(ctx context.Context) ([]core.FinancialRecord, error)
	ListPublic(ctx context.Context) ([]core.PublicRecord, error)
	Create(ctx context.Context, in core.RecordInput) (core.FinancialRecord, error)
	Update(ctx context.Context, in core.RecordInput) (core.FinancialRecord, error)
	Delete(ctx context.Context, yearMonth string) error
}

// Bootstrapper runs the schema and seed procedures.
type Bootstrapper interface {
	Init(ctx context.Context) (bootstrap.InitResult, error)
	Migrate(ctx context.Context) (bootstrap.MigrateResult, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups what NewServer wires into the routes.
type Dependencies struct {
	Records   RecordService
	Bootstrap Bootstrapper
	Guard     *auth.Guard
	DB        Pinger
	Logger    *applog.Logger
}

type Server struct {
	http.Server
	records   RecordService
	bootstrap Bootstrapper
	guard     *auth.Guard
	db        Pinger
	logger    *applog.Logger

	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	started          time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	guard := deps.Guard
	if guard == nil {
		guard = auth.NewGuard("", nil)
	}

	detector := security.NewDetector()
	s := &Server{
		records:          deps.Records,
		bootstrap:        deps.Bootstrap,
		guard:            guard,
		db:               deps.DB,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		started:          time.Now(),
	}

	router := mux.NewRouter()
	s.registerRoutes(router)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(router, logger),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
	return s
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/api/admin", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/admin", s.handleCheckToken).Methods(http.MethodGet)

	r.HandleFunc("/api/financial-data", s.handleListRecords).Methods(http.MethodGet)
	r.HandleFunc("/api/financial-data", s.requireAdmin(s.handleCreateRecord)).Methods(http.MethodPost)
	r.HandleFunc("/api/financial-data", s.requireAdmin(s.handleUpdateRecord)).Methods(http.MethodPut)
	r.HandleFunc("/api/financial-data", s.requireAdmin(s.handleDeleteRecord)).Methods(http.MethodDelete)

	r.HandleFunc("/api/init", s.requireAdmin(s.handleInit)).Methods(http.MethodPost)
	r.HandleFunc("/api/migrate", s.requireAdmin(s.handleMigrate)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		MethodNotAllowedError(allowedMethods(r, req)...).Write(w)
	})
}

// allowedMethods lists the methods registered for the request path.
func allowedMethods(r *mux.Router, req *http.Request) []string {
	var allowed []string
	_ = r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tmpl, err := route.GetPathTemplate()
		if err != nil || tmpl != req.URL.Path {
			return nil
		}
		if methods, err := route.GetMethods(); err == nil {
			allowed = append(allowed, methods...)
		}
		return nil
	})
	return allowed
}

// middleware composes the request pipeline. The logger is attached first and
// the detector runs last, right before routing.
func (s *Server) middleware(h http.Handler, logger *applog.Logger) http.Handler {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	h = s.securityDetector.Middleware(h)
	h = headers.Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = s.traceMiddleware.Middleware(h)
	h = applog.Middleware(logger)(h)
	return h
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			applog.FieldOperation, applog.OpShutdown)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
