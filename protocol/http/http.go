// Package http implements the Git smart HTTP protocol on top of
// package protocol.  See https://git-scm.com/docs/http-protocol for
// details.
//
// Three routes are served under /{owner}/{repo}: the info/refs
// advertisement, git-upload-pack (protocol v2 ls-refs only) and
// git-receive-pack.  Everything else is answered with 404.
package http

// BUG(lor): Request bodies are read into memory in full before they are
// decoded, as the pkt-line decoder works on a complete buffer.

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lxr/gitkv/pktline"
	"github.com/lxr/gitkv/protocol"
	"github.com/lxr/gitkv/repository"
)

// DefaultMaxBodyBytes caps decoded request bodies when Options leaves
// MaxBodyBytes unset.
const DefaultMaxBodyBytes = 100 << 20

const resultType = "application/x-git-upload-pack-result"

// Options configure a Server.
type Options struct {
	// Store is where refs are read from.  Required.
	Store repository.Interface
	// Logger receives one line per request and the diagnostics of
	// pushes.  Defaults to a null logger.
	Logger hclog.Logger
	// CORSOrigins lists the origins allowed to make cross-origin
	// requests.  CORS is disabled if empty.
	CORSOrigins []string
	// MaxBodyBytes caps the size of a request body after gzip
	// decoding.
	MaxBodyBytes int64
	// Registry receives the server's metrics.  A private registry is
	// created if nil.
	Registry *prometheus.Registry
}

// A Server serves Git repositories out of a ref store.
type Server struct {
	store   repository.Interface
	logger  hclog.Logger
	origins []string
	maxBody int64
	reg     *prometheus.Registry
	metrics *metrics
}

// New returns a Server configured by opts.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("http: no store")
	}
	s := &Server{
		store:   opts.Store,
		logger:  opts.Logger,
		origins: opts.CORSOrigins,
		maxBody: opts.MaxBodyBytes,
		reg:     opts.Registry,
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(s.reg)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	return s, nil
}

// Registry returns the registry the server's metrics are kept in.
func (s *Server) Registry() *prometheus.Registry {
	return s.reg
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Content-Encoding", "Git-Protocol", "Authorization", "User-Agent"},
		}))
	}
	r.Route("/{owner}/{repo}", func(r chi.Router) {
		r.Get("/info/refs", s.handle(s.advertiseRefs))
		r.With(gunzip).Post("/git-upload-pack", s.handle(s.uploadPack))
		r.With(gunzip).Post("/git-receive-pack", s.handle(s.receivePack))
	})
	notFound := func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

// advertiseRefs is invoked using GET on
// $GIT_URL/info/refs?service=$servicename.
func (s *Server) advertiseRefs(w http.ResponseWriter, r *http.Request, repo repository.Repo) error {
	service, err := protocol.ParseService(r.URL.Query().Get("service"))
	if err != nil {
		return errLegacyProtocol
	}
	pkts, err := protocol.AdvertiseRefs(r.Context(), s.store, repo, service)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", fmt.Sprintf("application/x-%s-advertisement", service))
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(pktline.Encode(pkts...))
	return nil
}

// uploadPack is invoked using POST on $GIT_URL/git-upload-pack.
func (s *Server) uploadPack(w http.ResponseWriter, r *http.Request, repo repository.Repo) error {
	pkts, err := s.readPackets(w, r)
	if err != nil {
		return err
	}
	req, err := protocol.ParseCommand(pkts)
	if errors.Is(err, protocol.ErrUnsupportedCommand) {
		setResultHeaders(w)
		return &Error{Status: http.StatusNotFound}
	}
	if err != nil {
		return err
	}
	out, err := protocol.LsRefs(r.Context(), s.store, repo, req)
	if err != nil {
		return err
	}
	setResultHeaders(w)
	w.Write(pktline.Encode(out...))
	return nil
}

// receivePack is invoked using POST on $GIT_URL/git-receive-pack.
func (s *Server) receivePack(w http.ResponseWriter, r *http.Request, repo repository.Repo) error {
	pkts, err := s.readPackets(w, r)
	if err != nil {
		return err
	}
	logger := s.logger.With("repo", repo.String(), "request_id", middleware.GetReqID(r.Context()))
	res, err := protocol.ReceivePack(r.Context(), logger, pkts)
	if err != nil {
		s.metrics.unpackFailures.Inc()
		return err
	}
	s.metrics.countObjects(res.Objects)
	setResultHeaders(w)
	return pktline.NewWriter(w).Flush()
}

func setResultHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", resultType)
	w.Header().Set("Cache-Control", "no-cache")
}

// readPackets reads and decodes the request body.
func (s *Server) readPackets(w http.ResponseWriter, r *http.Request) ([]pktline.Packet, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var merr *http.MaxBytesError
		if errors.As(err, &merr) {
			return nil, &Error{http.StatusRequestEntityTooLarge, "Request Entity Too Large"}
		}
		return nil, err
	}
	return pktline.Decode(body)
}
