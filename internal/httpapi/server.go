package httpapi

import (
	"context"
	"net/http"
	"time"

	"movebot/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// RecordReader reads persisted completions.
type RecordReader interface {
	ReadAll(ctx context.Context, userName string) ([]session.Record, error)
}

// Server is the read-only status API.
type Server struct {
	state          *session.State
	records        RecordReader
	includePending bool
	log            *zap.Logger
	router         chi.Router
}

// New creates a Server with all routes configured.
func New(state *session.State, records RecordReader, includePending bool, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		state:          state,
		records:        records,
		includePending: includePending,
		log:            log,
		router:         chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/workout", s.handleWorkout)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/stats/{user}", s.handleUserStats)
}

// Serve runs an http.Server on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("status api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
