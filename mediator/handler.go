package mediator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/s0up4200/jiralink/rest"
)

// MaxEnvelopeSize bounds the request envelope read from a client
const MaxEnvelopeSize = 32 << 20

// Server replays request envelopes against one upstream Jira
type Server struct {
	router   *httprouter.Router
	upstream *rest.Transport
	executor *rest.DirectExecutor
	logger   zerolog.Logger
}

// NewHandler returns the forwarding handler. Every envelope is replayed
// against upstream and signed with auth, which may be nil. A non-nil
// fallback gets one retry after a 401, as with direct execution.
func NewHandler(upstream *rest.Transport, auth, fallback rest.Authenticator, logger zerolog.Logger) http.Handler {
	s := &Server{
		router:   httprouter.New(),
		upstream: upstream,
		executor: rest.NewDirectExecutor(upstream, auth, fallback, logger),
		logger:   logger,
	}
	s.router.POST(rest.ForwardingPath, s.forward)
	s.router.GET("/healthz", s.health)
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// forward always answers 200; the verdict lives in the envelope
func (s *Server) forward(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxEnvelopeSize))
	if err != nil {
		s.reject(w, fmt.Errorf("failed to read envelope: %w", err))
		return
	}

	req, err := rest.DecodeRequest(data)
	if err != nil {
		s.reject(w, err)
		return
	}
	if err := s.checkTarget(req); err != nil {
		s.reject(w, err)
		return
	}

	logger := s.logger.With().
		Str("method", string(req.Method)).
		Str("resource", req.Resource).
		Logger()

	resp, err := s.executor.Send(r.Context(), req)
	if err != nil {
		logger.Debug().Err(err).Msg("Upstream call aborted")
		s.reject(w, err)
		return
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Str("state", resp.Status.String()).
		Msg("Forwarded request")

	s.write(w, rest.EncodeResponse(resp))
}

// checkTarget keeps absolute resources on the upstream host
func (s *Server) checkTarget(req *rest.Request) error {
	if s.upstream.OnUpstream(req) {
		return nil
	}
	target, _ := url.Parse(req.Resource)
	return errors.New("resource is not on the upstream host: " + target.Host)
}

func (s *Server) reject(w http.ResponseWriter, err error) {
	s.logger.Warn().Err(err).Msg("Rejected forwarded request")
	s.write(w, &rest.ResponseEnvelope{
		RequestSuccessful: false,
		ErrorMessage:      err.Error(),
	})
}

func (s *Server) write(w http.ResponseWriter, env *rest.ResponseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(env)
}
