// Package gateway exposes the session actor runtime over HTTP. It is a
// thin transport collaborator: it validates the call frame, resolves the
// addressing identity from whichever credential is present, and hands the
// call to the actor manager. All authorization decisions stay inside the
// actor.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stewardhq/steward/internal/actor"
	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/identity"
	"github.com/stewardhq/steward/internal/observability"
)

// Header carrying the direct-service credential. Delegated-user tokens
// arrive in the standard Authorization bearer header.
const serviceTokenHeader = "X-Service-Token"

// Config configures the gateway server.
type Config struct {
	Host string
	Port int

	// Registry, when set, backs /metrics. Nil falls back to the default
	// prometheus registry.
	Registry *prometheus.Registry

	Logger *slog.Logger
}

// Server is the HTTP front of the runtime.
type Server struct {
	config   Config
	manager  *actor.Manager
	resolver *identity.Resolver
	logger   *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a gateway over the given actor manager.
func NewServer(config Config, manager *actor.Manager) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   config,
		manager:  manager,
		resolver: identity.NewResolver(),
		logger:   logger,
	}
}

// Handler builds the route table. Exposed separately from Start so tests
// can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/call", s.handleCall)
	mux.HandleFunc("/healthz", s.handleHealthz)

	if s.config.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

// Start begins serving. It returns once the listener is bound; serving
// continues in the background until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway server error", "error", err)
		}
	}()

	s.logger.Info("gateway listening", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// RegisterRuntimeMetrics exposes the live-actor count on the registry
// backing /metrics.
func RegisterRuntimeMetrics(reg prometheus.Registerer, manager *actor.Manager) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "steward_active_actors",
			Help: "Number of live session actor instances.",
		},
		func() float64 { return float64(manager.Len()) },
	))
}

// callFrame is the wire shape of POST /v1/call.
type callFrame struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input,omitempty"`
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "POST required")
		return
	}

	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := s.logger.With("request_id", requestID)

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
		return
	}

	var frame callFrame
	if err := validateCallFrame(raw, &frame); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	credential := credentialFromRequest(r)
	addressing := credential.ServiceToken
	if addressing == "" {
		addressing = credential.BearerToken
	}
	if addressing == "" {
		writeEnvelope(w, http.StatusUnauthorized, actor.Response{
			OK:        false,
			ErrorKind: "unauthorized",
			Message:   "credentials missing, invalid, or expired",
		})
		return
	}

	id, err := s.resolver.Resolve(addressing)
	if err != nil {
		writeEnvelope(w, http.StatusUnauthorized, actor.Response{
			OK:        false,
			ErrorKind: "invalid_credential",
			Message:   "credential cannot be parsed under either scheme",
		})
		return
	}

	// A dispatched call runs to completion even if the client goes away;
	// the actor's durable writes must not be torn by a disconnect.
	ctx := context.WithoutCancel(r.Context())
	ctx = observability.WithRequestID(ctx, requestID)

	logger.Debug("dispatching call", "tool", frame.Tool, "identity", id)
	resp := s.manager.Dispatch(ctx, id, actor.Call{
		Tool:       frame.Tool,
		Input:      frame.Input,
		Credential: credential,
	})

	writeEnvelope(w, statusFor(resp), resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// credentialFromRequest pulls both credential slots without judging them;
// the auth builder decides what a request with both is worth.
func credentialFromRequest(r *http.Request) auth.Credential {
	cred := auth.Credential{
		ServiceToken: strings.TrimSpace(r.Header.Get(serviceTokenHeader)),
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		cred.BearerToken = strings.TrimSpace(rest)
	}
	return cred
}

// statusFor maps envelope error kinds to HTTP status codes. The envelope
// itself is the contract; the status is a convenience for plain HTTP
// clients.
func statusFor(resp actor.Response) int {
	if resp.OK {
		return http.StatusOK
	}
	switch resp.ErrorKind {
	case "unauthorized", "ambiguous_credentials", "invalid_credential":
		return http.StatusUnauthorized
	case "unknown_tool":
		return http.StatusNotFound
	case "invalid_input":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeEnvelope(w http.ResponseWriter, status int, resp actor.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeEnvelope(w, status, actor.Response{OK: false, ErrorKind: kind, Message: message})
}
