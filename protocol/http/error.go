package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lxr/gitkv/repository"
)

// An Error is an error with an HTTP status.  Handlers return it to
// choose the response; any other error becomes a 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return strconv.Itoa(e.Status) + " " + http.StatusText(e.Status)
	}
	return strconv.Itoa(e.Status) + " " + e.Message
}

var (
	errNotFound       = &Error{http.StatusNotFound, "Not Found."}
	errLegacyProtocol = &Error{http.StatusForbidden, "Legacy protocol not allowed"}
)

// A handlerFunc serves one repository request.
type handlerFunc func(w http.ResponseWriter, r *http.Request, repo repository.Repo) error

// handle adapts fn to an http.HandlerFunc.  It is the one place where
// errors turn into responses.
func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := repository.ParseRepo(chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
		if err != nil {
			s.writeError(w, r, errNotFound)
			return
		}
		if err := fn(w, r, repo); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		msg := err.Error()
		if msg == "" {
			msg = "Server Error"
		}
		e = &Error{http.StatusInternalServerError, msg}
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	if e.Message != "" && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(e.Status)
	io.WriteString(w, e.Message)
}
