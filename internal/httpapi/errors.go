package httpapi

import (
	"errors"
	"net/http"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	msgServerError        = "the server encountered a problem and could not process your request"
	msgRetryLater         = "the request conflicted with concurrent changes, please retry"
	msgNotFound           = "the requested resource could not be found"
	msgRateLimited        = "rate limit exceeded"
	msgMissingToken       = "missing bearer token"
	msgInvalidToken       = "invalid or expired token"
	msgAdminOnly          = "admin role required"
	msgNotYourResource    = "not allowed for this user"
	msgInvalidCredentials = "invalid email or password"
)

func (s *Server) logError(r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), err.Error(),
		"request_method", r.Method,
		"request_url", r.URL.String(),
	)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{"error": message})
}

// serverErrorResponse never exposes err to the client.
func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.errorResponse(w, http.StatusInternalServerError, msgServerError)
}

// engineErrorResponse answers 503 when the engine gave up on a concurrency conflict.
func (s *Server) engineErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, recordstore.ErrConcurrencyConflict) {
		s.logger.WarnContext(r.Context(), "retries exhausted", "request_url", r.URL.String(), "error", err)
		w.Header().Set("Retry-After", "1")
		s.errorResponse(w, http.StatusServiceUnavailable, msgRetryLater)

		return
	}

	s.serverErrorResponse(w, r, err)
}

func (s *Server) rejectionResponse(w http.ResponseWriter, rejection core.Rejection) {
	s.errorResponse(w, statusForRejection(rejection), rejection.Reason)
}

func statusForRejection(rejection core.Rejection) int {
	switch rejection.Kind {
	case core.RejectionNotFound:
		return http.StatusNotFound
	case core.RejectionConflict:
		return http.StatusConflict
	case core.RejectionInvalid:
		return http.StatusUnprocessableEntity
	case core.RejectionUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) badRequestResponse(w http.ResponseWriter, err error) {
	s.errorResponse(w, http.StatusBadRequest, err.Error())
}

func (s *Server) notFoundResponse(w http.ResponseWriter, _ *http.Request) {
	s.errorResponse(w, http.StatusNotFound, msgNotFound)
}

func (s *Server) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
}

func (s *Server) unauthenticatedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	s.errorResponse(w, http.StatusUnauthorized, message)
}

func (s *Server) forbiddenResponse(w http.ResponseWriter, message string) {
	s.errorResponse(w, http.StatusForbidden, message)
}
