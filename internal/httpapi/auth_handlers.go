package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/loanengine"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      recordstore.Role `json:"role"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input loginRequest
	if err := readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, err)
		return
	}

	session, err := s.gate.Authenticate(r.Context(), input.Email, input.Password)
	if errors.Is(err, accessgate.ErrInvalidCredentials) {
		s.unauthenticatedResponse(w, msgInvalidCredentials)
		return
	}
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"session": sessionResponse{
		ID:        session.Caller.ID.String(),
		Name:      session.Name,
		Email:     session.Email,
		Role:      session.Caller.Role,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}})
}

// registerUserHandler registers members. Only requests authenticated as admin may pick another role.
func (s *Server) registerUserHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input registerUserRequest
	if err := readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, err)
		return
	}

	caller, err := s.optionalCaller(r)
	if err != nil {
		s.authorizationErrorResponse(w, r, err)
		return
	}

	role := recordstore.Role(input.Role)
	if role != "" && role != recordstore.RoleMember && (caller == nil || !caller.IsAdmin()) {
		s.forbiddenResponse(w, msgAdminOnly)
		return
	}

	passwordHash, err := accessgate.HashPassword(input.Password)
	if errors.Is(err, accessgate.ErrEmptyPassword) {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}

	result, err := s.engine.RegisterUser(r.Context(), loanengine.UserDetails{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"user": result.User})
}

func (s *Server) deactivateUserHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	deactivated, err := s.engine.DeactivateUser(r.Context(), userID)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if !deactivated {
		s.errorResponse(w, http.StatusNotFound, "user not found")
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "user deactivated"})
}
