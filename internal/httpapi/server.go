package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/loanengine"
)

const (
	httpSpanName = "loansd.http"

	DefaultRateLimit       = rate.Limit(10)
	DefaultRateBurst       = 20
	DefaultShutdownTimeout = 20 * time.Second
)

var (
	ErrNilEngine        = errors.New("engine must not be nil")
	ErrNilGate          = errors.New("access gate must not be nil")
	ErrNilLogger        = errors.New("logger must not be nil")
	ErrInvalidRateLimit = errors.New("rate limit and burst must be positive")
)

// Server serves the JSON API.
type Server struct {
	engine          *loanengine.Engine
	gate            *accessgate.Gate
	logger          *slog.Logger
	limiter         *rateLimiter
	rateLimit       rate.Limit
	rateBurst       int
	httpTelemetry   bool
	shutdownTimeout time.Duration
}

// Option defines a functional option for configuring a Server.
type Option func(*Server) error

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return ErrNilLogger
		}

		s.logger = logger

		return nil
	}
}

// WithRateLimit sets the per client IP request rate and burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) error {
		if limit <= 0 || burst <= 0 {
			return ErrInvalidRateLimit
		}

		s.rateLimit = limit
		s.rateBurst = burst

		return nil
	}
}

// WithHTTPTelemetry wraps the handler with otelhttp, which uses the global OpenTelemetry providers.
func WithHTTPTelemetry() Option {
	return func(s *Server) error {
		s.httpTelemetry = true

		return nil
	}
}

// WithShutdownTimeout bounds how long ListenAndServe waits for in-flight requests.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		s.shutdownTimeout = timeout

		return nil
	}
}

func NewServer(engine *loanengine.Engine, gate *accessgate.Gate, options ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	if gate == nil {
		return nil, ErrNilGate
	}

	s := &Server{
		engine:          engine,
		gate:            gate,
		logger:          slog.Default(),
		rateLimit:       DefaultRateLimit,
		rateBurst:       DefaultRateBurst,
		shutdownTimeout: DefaultShutdownTimeout,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.limiter = newRateLimiter(s.rateLimit, s.rateBurst, time.Now)

	return s, nil
}

// Handler returns the API with all middleware applied.
func (s *Server) Handler() http.Handler {
	handler := s.recoverPanic(s.rateLimited(s.routes()))

	if !s.httpTelemetry {
		return handler
	}

	return otelhttp.NewHandler(handler, httpSpanName)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	apiServer := &http.Server{
		Handler:           s.Handler(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server", "address", listener.Addr().String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		shutdownErr <- apiServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", "address", listener.Addr().String())

	err := apiServer.Serve(listener)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err = <-shutdownErr; err != nil {
		return err
	}

	s.logger.Info("server stopped", "address", listener.Addr().String())

	return nil
}
