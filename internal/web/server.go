// Package web exposes a Document over HTTP and WebSocket: clients push
// document text and receive the command lists that keep their render
// targets in sync.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/yaklabco/blocksync/internal/logging"
	"github.com/yaklabco/blocksync/pkg/blockdoc"
)

// Server serves the live sync protocol for a single document.
//
// The document core provides no locking, so the server owns the
// serialization boundary: every Update and payload mutation runs under one
// mutex, while render jobs and clients stay concurrent outside it.
type Server struct {
	logger     *log.Logger
	upgrader   websocket.Upgrader
	maxMessage int64

	docMu sync.Mutex
	doc   *blockdoc.Document

	clientsMu sync.Mutex
	clients   []*wsClient
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeUnknownMethod = -32601
	codeBadParams     = -32602
)

// NewServer creates a sync server around the given document.
// maxMessage caps incoming websocket messages in bytes; zero means no cap.
func NewServer(doc *blockdoc.Document, logger *log.Logger, maxMessage int64) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{
		logger:     logger,
		doc:        doc,
		maxMessage: maxMessage,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// ServeHTTP routes the sync endpoints.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.handleWebSocket(w, r)
	case "/snapshot":
		s.handleSnapshot(w, r)
	case "/healthz":
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	default:
		http.NotFound(w, r)
	}
}

// handleSnapshot serves the current snapshot as JSON, without payloads.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.docMu.Lock()
	data, err := s.doc.Export()
	s.docMu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", logging.FieldError, err)
		return
	}
	if s.maxMessage > 0 {
		conn.SetReadLimit(s.maxMessage)
	}

	client := &wsClient{conn: conn}
	s.clientsMu.Lock()
	s.clients = append(s.clients, client)
	s.clientsMu.Unlock()

	defer func() {
		_ = conn.Close()
		s.clientsMu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.clientsMu.Unlock()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			continue
		}
		resp := s.handleRPC(client, req)
		client.send(resp)
	}
}

func (c *wsClient) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	_ = c.conn.WriteMessage(websocket.TextMessage, data)
	c.mu.Unlock()
}

func (s *Server) handleRPC(client *wsClient, req rpcRequest) rpcResponse {
	switch req.Method {
	case "update":
		return s.rpcUpdate(client, req)
	case "setPayload":
		return s.rpcSetPayload(req)
	case "linePosition":
		return s.rpcLinePosition(req)
	case "needsRender":
		return s.rpcNeedsRender(req)
	case "stats":
		return s.rpcStats(req)
	default:
		return rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: codeUnknownMethod, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

// rpcUpdate runs an update and returns the command list. Other connected
// clients receive the same result as an "update" notification so every
// render target converges on the new revision.
func (s *Server) rpcUpdate(client *wsClient, req rpcRequest) rpcResponse {
	var p struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: codeBadParams, Message: err.Error()}}
	}

	s.docMu.Lock()
	result := s.doc.Update(p.Text)
	stats := s.doc.Stats()
	s.docMu.Unlock()

	s.logger.Debug("document updated",
		logging.FieldRevision, result.Revision,
		logging.FieldBlocks, stats.Blocks,
		logging.FieldCommands, len(result.Commands),
		logging.FieldKept, result.Counters.Kept,
		logging.FieldInserted, result.Counters.Inserted,
		logging.FieldRemoved, result.Counters.Removed,
		logging.FieldReplaced, result.Counters.Replaced,
	)

	s.broadcastExcept(client, "update", result)
	return rpcResponse{ID: req.ID, Result: result}
}

func (s *Server) rpcSetPayload(req rpcRequest) rpcResponse {
	var p struct {
		BlockID blockdoc.BlockID `json:"blockId"`
		Payload string           `json:"payload"`
		Pending bool             `json:"pending"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: codeBadParams, Message: err.Error()}}
	}

	s.docMu.Lock()
	var ok bool
	if p.Pending {
		ok = s.doc.SetPendingPayload(p.BlockID, p.Payload)
	} else {
		ok = s.doc.SetPayload(p.BlockID, p.Payload)
	}
	revision := s.doc.Revision()
	s.docMu.Unlock()

	if !ok {
		// The identity was superseded by a newer update; the renderer
		// should requery the render-needed queue.
		return rpcResponse{ID: req.ID, Result: map[string]any{"accepted": false, "revision": revision}}
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"accepted": true, "revision": revision}}
}

func (s *Server) rpcLinePosition(req rpcRequest) rpcResponse {
	var p struct {
		Line float64 `json:"line"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: codeBadParams, Message: err.Error()}}
	}

	s.docMu.Lock()
	bp := s.doc.BlockPositionFromLine(p.Line)
	s.docMu.Unlock()

	if bp == nil {
		// Not rendered yet: a normal state, not an error.
		return rpcResponse{ID: req.ID, Result: map[string]any{"found": false}}
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{
		"found":    true,
		"blockId":  bp.ID,
		"progress": bp.Progress,
	}}
}

func (s *Server) rpcNeedsRender(req rpcRequest) rpcResponse {
	s.docMu.Lock()
	blocks := s.doc.BlocksNeedingRender()
	s.docMu.Unlock()

	type item struct {
		BlockID  blockdoc.BlockID `json:"blockId"`
		Kind     string           `json:"kind"`
		Language string           `json:"language,omitempty"`
		Content  string           `json:"content"`
	}
	items := make([]item, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, item{
			BlockID:  b.ID,
			Kind:     b.Kind.String(),
			Language: b.Language,
			Content:  b.Content,
		})
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"blocks": items}}
}

func (s *Server) rpcStats(req rpcRequest) rpcResponse {
	s.docMu.Lock()
	stats := s.doc.Stats()
	s.docMu.Unlock()
	return rpcResponse{ID: req.ID, Result: stats}
}

// broadcastExcept sends a notification to all connected clients except the
// originator.
func (s *Server) broadcastExcept(origin *wsClient, method string, params any) {
	msg := map[string]any{"method": method, "params": params}

	s.clientsMu.Lock()
	clients := append([]*wsClient(nil), s.clients...)
	s.clientsMu.Unlock()

	for _, c := range clients {
		if c == origin {
			continue
		}
		c.send(msg)
	}
}
