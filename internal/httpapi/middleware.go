package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	clientIdleTimeout = 3 * time.Minute
	sweepInterval     = time.Minute
)

type callerContextKey struct{}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				w.Header().Set("Connection", "close")
				s.serverErrorResponse(w, r, fmt.Errorf("panic: %v", recovered))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP. Buckets idle for clientIdleTimeout are dropped.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(limit rate.Limit, burst int, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		clients:   make(map[string]*client),
		limit:     limit,
		burst:     burst,
		now:       now,
		lastSweep: now(),
	}
}

func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > sweepInterval {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > clientIdleTimeout {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, found := l.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			s.serverErrorResponse(w, r, err)
			return
		}

		if !s.limiter.allow(ip) {
			s.errorResponse(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticated rejects requests without a valid bearer token of an active user
// and puts the caller into the request context.
func (s *Server) authenticated(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		token, found := bearerToken(r)
		if !found {
			s.unauthenticatedResponse(w, msgMissingToken)
			return
		}

		caller, err := s.gate.Authorize(r.Context(), token)
		if err != nil {
			s.authorizationErrorResponse(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), callerContextKey{}, caller)), params)
	}
}

// adminOnly must be wrapped by authenticated.
func (s *Server) adminOnly(next httprouter.Handle) httprouter.Handle {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		if !callerFrom(r).IsAdmin() {
			s.forbiddenResponse(w, msgAdminOnly)
			return
		}

		next(w, r, params)
	})
}

// optionalCaller returns the caller when the request carries a bearer token.
// A token that is present but invalid is an error.
func (s *Server) optionalCaller(r *http.Request) (*core.Caller, error) {
	token, found := bearerToken(r)
	if !found {
		return nil, nil
	}

	caller, err := s.gate.Authorize(r.Context(), token)
	if err != nil {
		return nil, err
	}

	return &caller, nil
}

func (s *Server) authorizationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, accessgate.ErrInvalidToken), errors.Is(err, accessgate.ErrExpiredToken):
		s.unauthenticatedResponse(w, msgInvalidToken)
	case errors.Is(err, accessgate.ErrInactiveUser):
		s.unauthenticatedResponse(w, err.Error())
	default:
		s.serverErrorResponse(w, r, err)
	}
}

func callerFrom(r *http.Request) core.Caller {
	caller, _ := r.Context().Value(callerContextKey{}).(core.Caller)

	return caller
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
