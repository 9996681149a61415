package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.GET("/v1/healthcheck", s.healthcheckHandler)
	router.POST("/v1/auth/login", s.loginHandler)

	router.POST("/v1/users", s.registerUserHandler)
	router.DELETE("/v1/users/:id", s.adminOnly(s.deactivateUserHandler))
	router.GET("/v1/users/:id/loans", s.authenticated(s.listLoansOfUserHandler))

	router.GET("/v1/books", s.listBooksHandler)
	router.GET("/v1/books/:id", s.showBookHandler)
	router.POST("/v1/books", s.adminOnly(s.addBookHandler))
	router.PATCH("/v1/books/:id", s.adminOnly(s.updateBookHandler))
	router.DELETE("/v1/books/:id", s.adminOnly(s.deactivateBookHandler))

	router.GET("/v1/loans", s.adminOnly(s.listLoansHandler))
	router.POST("/v1/loans", s.authenticated(s.createLoanHandler))
	router.GET("/v1/loans/:id", s.authenticated(s.showLoanHandler))
	router.PUT("/v1/loans/:id/return", s.authenticated(s.returnLoanHandler))
	router.DELETE("/v1/loans/:id", s.adminOnly(s.cancelLoanHandler))

	return router
}

func (s *Server) healthcheckHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, envelope{"status": "available"})
}
