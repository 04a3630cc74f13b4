package daemon

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"nocturne/src/database"
	"nocturne/src/nerrors"
	"nocturne/src/persona"
)

// routeMethod routes JSON-RPC methods to their handlers
func (s *Server) routeMethod(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "persona.greet":
		return s.handleGreet(ctx, params)
	case "persona.chat":
		return s.handleChat(ctx, params)
	case "persona.glitch":
		return s.handleGlitch(params)
	case "session.get":
		return s.handleSessionGet(ctx, params)
	case "status.get":
		return s.handleStatusGet()
	default:
		return nil, &RPCError{Code: -32601, Message: "Method not found"}
	}
}

// GreetParams requests an opening line for a session.
type GreetParams struct {
	SessionID string `json:"session_id,omitempty"`
	Hour      *int   `json:"hour,omitempty"`
}

type GreetResult struct {
	SessionID  string  `json:"session_id"`
	TemplateID string  `json:"template_id"`
	Text       string  `json:"text"`
	Intensity  float64 `json:"intensity"`
}

func (s *Server) handleGreet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p GreetParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &RPCError{Code: -32602, Message: "Invalid params"}
		}
	}

	now := time.Now()
	sess, err := s.registry.GetOrCreate(ctx, p.SessionID, now)
	if err != nil {
		return nil, err
	}

	hour := now.Hour()
	if p.Hour != nil {
		hour = *p.Hour
	}

	reply, err := s.engine.Greet(sess.Tier, sess.Context, hour)
	if err != nil {
		return nil, rpcFromEngine(err)
	}

	return &GreetResult{
		SessionID:  sess.ID,
		TemplateID: reply.TemplateID,
		Text:       reply.Text,
		Intensity:  reply.Intensity,
	}, nil
}

// ChatParams carries one chat turn.
type ChatParams struct {
	SessionID string `json:"session_id,omitempty"`
	Input     string `json:"input"`
	Context   string `json:"context,omitempty"`
	State     string `json:"state,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

type ChatResult struct {
	SessionID  string  `json:"session_id"`
	TemplateID string  `json:"template_id"`
	Text       string  `json:"text"`
	Intensity  float64 `json:"intensity"`
	Signal     string  `json:"signal"`
	Crisis     bool    `json:"crisis"`
	Tier       string  `json:"tier"`
	Turn       int64   `json:"turn"`
}

func (s *Server) handleChat(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChatParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &RPCError{Code: -32602, Message: "Invalid params"}
	}
	if p.Input == "" {
		return nil, &RPCError{Code: -32602, Message: "input is required"}
	}

	now := time.Now()
	sess, err := s.registry.GetOrCreate(ctx, p.SessionID, now)
	if err != nil {
		return nil, err
	}

	// Per-call overrides are persisted onto the session.
	if p.Context != "" {
		c, err := persona.ParseContext(p.Context)
		if err != nil {
			return nil, rpcFromEngine(err)
		}
		sess.Context = c
	}
	if p.State != "" {
		st, err := persona.ParseState(p.State)
		if err != nil {
			return nil, rpcFromEngine(err)
		}
		sess.State = st
	}
	if p.Mode != "" {
		m, err := persona.ParseMode(p.Mode)
		if err != nil {
			return nil, rpcFromEngine(err)
		}
		sess.Mode = m
	}

	if err := s.registry.Touch(ctx, sess, now); err != nil {
		return nil, err
	}

	reply, err := s.engine.Respond(persona.Turn{
		Input:   p.Input,
		Tier:    sess.Tier,
		Context: sess.Context,
		State:   sess.State,
		Mode:    sess.Mode,
	})
	if err != nil {
		s.logger.Warn("respond failed",
			zap.String("session", sess.ID),
			zap.String("input", p.Input),
			zap.Error(err))
		return nil, rpcFromEngine(err)
	}

	if s.history != nil {
		if err := s.history.Record(database.Exchange{
			SessionID:  sess.ID,
			Persona:    sess.Persona,
			Tier:       string(sess.Tier),
			Context:    string(sess.Context),
			UserText:   p.Input,
			ReplyText:  reply.Text,
			TemplateID: reply.TemplateID,
			Intensity:  reply.Intensity,
		}); err != nil {
			// History is best-effort; the reply still goes out.
			s.logger.Warn("history record failed", zap.Error(err))
		}
	}

	return &ChatResult{
		SessionID:  sess.ID,
		TemplateID: reply.TemplateID,
		Text:       reply.Text,
		Intensity:  reply.Intensity,
		Signal:     string(reply.Signal),
		Crisis:     reply.Crisis,
		Tier:       string(sess.Tier),
		Turn:       sess.Count(),
	}, nil
}

// GlitchParams applies the text effect to arbitrary text.
type GlitchParams struct {
	Text      string  `json:"text"`
	Intensity float64 `json:"intensity"`
}

type GlitchResult struct {
	Text string `json:"text"`
}

func (s *Server) handleGlitch(params json.RawMessage) (interface{}, error) {
	var p GlitchParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &RPCError{Code: -32602, Message: "Invalid params"}
	}
	return &GlitchResult{Text: s.engine.ApplyGlitch(p.Text, p.Intensity)}, nil
}

// SessionGetParams fetches session state.
type SessionGetParams struct {
	SessionID string `json:"session_id"`
}

type SessionGetResult struct {
	SessionID    string `json:"session_id"`
	Persona      string `json:"persona"`
	Tier         string `json:"tier"`
	Context      string `json:"context"`
	State        string `json:"state"`
	Mode         string `json:"mode"`
	Interactions int64  `json:"interactions"`
}

func (s *Server) handleSessionGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionGetParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &RPCError{Code: -32602, Message: "Invalid params"}
	}

	sess, err := s.registry.GetOrCreate(ctx, p.SessionID, time.Now())
	if err != nil {
		return nil, err
	}

	return &SessionGetResult{
		SessionID:    sess.ID,
		Persona:      sess.Persona,
		Tier:         string(sess.Tier),
		Context:      string(sess.Context),
		State:        string(sess.State),
		Mode:         string(sess.Mode),
		Interactions: sess.Count(),
	}, nil
}

type StatusResult struct {
	Persona   string `json:"persona"`
	Socket    string `json:"socket"`
	UptimeSec int64  `json:"uptime_sec"`
	Requests  int64  `json:"requests"`
}

func (s *Server) handleStatusGet() (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &StatusResult{
		Persona:   s.engine.Config().Metadata.ID,
		Socket:    s.socketPath,
		UptimeSec: int64(time.Since(s.startedAt).Seconds()),
		Requests:  s.requests,
	}, nil
}

// rpcFromEngine converts caller-input errors into the JSON-RPC invalid
// params code; everything else stays an internal error.
func rpcFromEngine(err error) error {
	if nerrors.IsInvalidInput(err) {
		return &RPCError{Code: -32602, Message: err.Error()}
	}
	return err
}
