package httpapi

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/AntonStoeckl/library-loans-go/loanengine"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/updatebook"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

type addBookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear int    `json:"published_year"`
	Genre         string `json:"genre"`
	Copies        int    `json:"copies"`
}

type updateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	PublishedYear   *int    `json:"published_year"`
	Genre           *string `json:"genre"`
	AvailableCopies *int    `json:"available_copies"`
}

func (s *Server) listBooksHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	visibility, ok := s.catalogVisibility(w, r)
	if !ok {
		return
	}

	books, err := s.engine.ListBooks(r.Context(), visibility)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"books": books.Books, "count": books.Count})
}

func (s *Server) showBookHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	bookID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	visibility, ok := s.catalogVisibility(w, r)
	if !ok {
		return
	}

	result, err := s.engine.BookByID(r.Context(), bookID, visibility)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"book": result.Book})
}

func (s *Server) addBookHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input addBookRequest
	if err := readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, err)
		return
	}

	result, err := s.engine.AddBook(r.Context(), loanengine.BookDetails(input))
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"book": result.Book})
}

func (s *Server) updateBookHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	bookID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	var input updateBookRequest
	if err = readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, err)
		return
	}

	result, err := s.engine.UpdateBook(r.Context(), bookID, updatebook.Changes(input))
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"book": result.Book})
}

func (s *Server) deactivateBookHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	bookID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	deactivated, err := s.engine.DeactivateBook(r.Context(), bookID)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if !deactivated {
		s.errorResponse(w, http.StatusNotFound, "book not found")
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "book deactivated"})
}

// catalogVisibility gives admins that ask for ?include_inactive=true the admin view, everyone else the member view.
// It writes the response itself when it returns false.
func (s *Server) catalogVisibility(w http.ResponseWriter, r *http.Request) (recordstore.Visibility, bool) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))
	if !includeInactive {
		return recordstore.MemberView, true
	}

	caller, err := s.optionalCaller(r)
	if err != nil {
		s.authorizationErrorResponse(w, r, err)
		return recordstore.MemberView, false
	}

	if caller == nil || !caller.IsAdmin() {
		s.forbiddenResponse(w, msgAdminOnly)
		return recordstore.MemberView, false
	}

	return recordstore.AdminView, true
}
