package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"nocturne/src/database"
	"nocturne/src/persona"
	"nocturne/src/session"
)

// Server exposes the persona engine over a unix-socket JSON-RPC 2.0 endpoint
// so chat frontends and shell hooks can share one engine and one session
// table.
type Server struct {
	engine   *persona.Engine
	registry *session.Registry
	history  *database.HistoryDB // nil when history is disabled

	listener   net.Listener
	server     *http.Server
	socketPath string
	logger     *zap.Logger

	mu        sync.RWMutex
	startedAt time.Time
	requests  int64
}

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// NewServer creates a daemon server. history may be nil.
func NewServer(engine *persona.Engine, registry *session.Registry, history *database.HistoryDB, socketPath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:     engine,
		registry:   registry,
		history:    history,
		socketPath: socketPath,
		logger:     logger,
	}
}

// Start begins listening for JSON-RPC requests on the unix socket.
func (s *Server) Start() error {
	// Remove stale socket from a previous run
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0660); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("json-rpc server listening",
		zap.String("socket", s.socketPath),
		zap.String("persona", s.engine.Config().Metadata.ID))

	go s.server.Serve(listener)

	return nil
}

// Stop gracefully shuts down the server and removes the socket.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)

	if s.history != nil {
		s.history.Close()
	}
	return s.registry.Close()
}

// SocketPath returns the socket the server is bound to.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, -32700, "Parse error")
		return
	}

	if req.JSONRPC != "2.0" {
		s.writeError(w, req.ID, -32600, "Invalid Request")
		return
	}

	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	result, err := s.routeMethod(r.Context(), req.Method, req.Params)
	if err != nil {
		s.logger.Warn("rpc call failed",
			zap.String("method", req.Method),
			zap.Error(err))
		if rpcErr, ok := err.(*RPCError); ok {
			s.writeError(w, req.ID, rpcErr.Code, rpcErr.Message)
		} else {
			s.writeError(w, req.ID, -32603, err.Error())
		}
		return
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
