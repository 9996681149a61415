package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

type createLoanRequest struct {
	BookID     string     `json:"book_id"`
	UserID     string     `json:"user_id"`
	BorrowDate *time.Time `json:"borrow_date"`
}

func (s *Server) listLoansHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	onlyOpen, _ := strconv.ParseBool(r.URL.Query().Get("open"))

	list := s.engine.ListLoans
	if onlyOpen {
		list = s.engine.ListOpenLoans
	}

	loans, err := list(r.Context(), recordstore.AdminView)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"loans": loans.Loans, "count": loans.Count})
}

// createLoanHandler lends a book to the caller. Admins may lend to another user by naming user_id.
func (s *Server) createLoanHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input createLoanRequest
	if err := readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, err)
		return
	}

	bookID, err := parseOptionalID(input.BookID)
	if err != nil || bookID == uuid.Nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, "book_id must be a valid id")
		return
	}

	userID, err := parseOptionalID(input.UserID)
	if err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, "user_id must be a valid id")
		return
	}

	caller := callerFrom(r)
	switch {
	case userID == uuid.Nil:
		userID = caller.ID
	case !caller.Owns(userID) && !caller.IsAdmin():
		s.forbiddenResponse(w, msgNotYourResource)
		return
	}

	result, err := s.engine.CreateLoan(r.Context(), userID, bookID, input.BorrowDate)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"loan": result.Loan})
}

func (s *Server) showLoanHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	loanID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	result, err := s.engine.LoanByID(r.Context(), loanID, callerFrom(r))
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"loan": result.Loan})
}

func (s *Server) returnLoanHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	loanID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	result, err := s.engine.ReturnLoan(r.Context(), loanID, callerFrom(r))
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if result.IsRejected() {
		s.rejectionResponse(w, *result.Rejection)
		return
	}

	response := envelope{"loan": result.Loan}
	if result.Notice != "" {
		response["notice"] = result.Notice
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) cancelLoanHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	loanID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	deleted, err := s.engine.CancelLoan(r.Context(), loanID)
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "loan not found")
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "loan deleted"})
}

func (s *Server) listLoansOfUserHandler(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, err := readIDParam(params)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	caller := callerFrom(r)
	if !caller.Owns(userID) && !caller.IsAdmin() {
		s.forbiddenResponse(w, msgNotYourResource)
		return
	}

	loans, err := s.engine.ListLoansByUser(r.Context(), userID, recordstore.VisibilityFor(caller.Role))
	if err != nil {
		s.engineErrorResponse(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"loans": loans.Loans, "count": loans.Count})
}
