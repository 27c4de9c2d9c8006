package mcpadapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/logging"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/ratelimit"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/sysstate"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
)

const ProtocolVersion = "2024-11-05"

// Server implements the stdio JSON-RPC 2.0 Protocol Adapter (spec §6).
type Server struct {
	name    string
	version string

	db       *store.Store
	pipeline *writepipeline.Pipeline
	sysState *sysstate.Service

	embeddingDim int

	rateLimiter *ratelimit.Limiter
	log         *logging.Logger

	stdin  io.Reader
	stdout io.Writer

	mu          sync.Mutex
	initialized bool
}

// Deps bundles the core services the adapter dispatches into.
type Deps struct {
	DB           *store.Store
	Pipeline     *writepipeline.Pipeline
	SysState     *sysstate.Service
	EmbeddingDim int
	RateLimiter  *ratelimit.Limiter // nil disables rate limiting
	ServerName   string
	ServerVersion string
}

// NewServer constructs a Server wired to the given core services.
func NewServer(deps Deps) *Server {
	log := logging.GetLogger("mcpadapter")
	log.Info("initializing MCP server", "version", deps.ServerVersion, "protocol", ProtocolVersion)

	return &Server{
		name:        deps.ServerName,
		version:     deps.ServerVersion,
		db:          deps.DB,
		pipeline:    deps.Pipeline,
		sysState:    deps.SysState,
		embeddingDim: deps.EmbeddingDim,
		rateLimiter: deps.RateLimiter,
		log:         log,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
	}
}

// Run drives the main JSON-RPC loop over stdin/stdout until ctx is
// cancelled or stdin is closed.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("starting MCP server main loop")
	scanner := bufio.NewScanner(s.stdin)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			s.log.Info("context cancelled, shutting down")
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		response := s.handleRequest(ctx, line)
		if response != nil {
			s.sendResponse(response)
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.Error("scanner error", "error", err)
		return fmt.Errorf("scanner error: %w", err)
	}

	s.log.Info("MCP server shutdown complete")
	return nil
}

func (s *Server) handleRequest(ctx context.Context, line string) *Response {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Error("failed to parse request", "error", err)
		return &Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: ParseError, Message: "Parse error", Data: err.Error()},
		}
	}

	traceID := uuid.New().String()
	s.log.Debug("received request", "method", req.Method, "id", req.ID, "trace_id", traceID)

	if req.JSONRPC != "2.0" {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: InvalidRequest, Message: "Invalid Request", Data: "jsonrpc must be '2.0'"},
		}
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req, traceID)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	default:
		s.log.Warn("method not found", "method", req.Method)
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: MethodNotFound, Message: "Method not found", Data: req.Method},
		}
	}
}

func (s *Server) handleInitialize(req Request) *Response {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities: ServerCapabilities{
				Tools: &ToolsCapability{ListChanged: false},
			},
			ServerInfo: ServerInfo{Name: s.name, Version: s.version},
		},
	}
}

func (s *Server) handleToolsList(req Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  ToolsListResult{Tools: toolDefinitions()},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req Request, traceID string) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: InvalidParams, Message: "Invalid params", Data: err.Error()},
		}
	}

	if s.rateLimiter != nil {
		result := s.rateLimiter.Allow(params.Name)
		if !result.Allowed {
			s.log.Warn("rate limit exceeded", "tool", params.Name, "limit_type", result.LimitType, "trace_id", traceID)
			return &Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &RPCError{
					Code:    RateLimitExceeded,
					Message: "Rate limit exceeded",
					Data: RateLimitErrorData{
						RetryAfterMs: result.RetryAfter.Milliseconds(),
						LimitType:    result.LimitType,
						Message:      fmt.Sprintf("rate limit exceeded for %s, retry after %v", result.LimitType, result.RetryAfter),
					},
				},
			}
		}
	}

	start := time.Now()
	result, err := s.callTool(ctx, params.Name, params.Arguments)
	duration := time.Since(start)

	if err != nil {
		s.log.LogError("tool_call", err, "tool", params.Name, "duration_ms", duration.Milliseconds(), "trace_id", traceID)
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: CallToolResult{
				Content: []ContentBlock{{Type: "text", Text: errorText(err)}},
				IsError: true,
			},
		}
	}

	s.log.LogOperation("tool_call", "tool", params.Name, "duration_ms", duration.Milliseconds(), "trace_id", traceID)

	text, marshalErr := marshalResult(result)
	if marshalErr != nil {
		s.log.Error("failed to marshal tool result", "tool", params.Name, "error", marshalErr)
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: InternalError, Message: "Internal error", Data: marshalErr.Error()},
		}
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: text}},
		},
	}
}

func (s *Server) callTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	switch name {
	case "create_item":
		return s.handleCreateItem(ctx, args)
	case "get_item":
		return s.handleGetItem(ctx, args)
	case "update_item":
		return s.handleUpdateItem(ctx, args)
	case "delete_item":
		return s.handleDeleteItem(ctx, args)
	case "list_items":
		return s.handleListItems(ctx, args)
	case "search_items":
		return s.handleSearchItems(ctx, args)
	case "get_related_items":
		return s.handleGetRelatedItems(ctx, args)
	case "find_similar_items":
		return s.handleFindSimilarItems(ctx, args)
	case "add_relations":
		return s.handleAddRelations(ctx, args)
	case "get_tags":
		return s.handleGetTags(ctx, args)
	case "get_stats":
		return s.handleGetStats(ctx, args)
	case "get_current_state":
		return s.handleGetCurrentState(ctx, args)
	case "update_current_state":
		return s.handleUpdateCurrentState(ctx, args)
	case "checkpoint":
		return s.handleCheckpoint(ctx, args)
	case "remove_relation":
		return s.handleRemoveRelation(ctx, args)
	case "rename_tag":
		return s.handleRenameTag(ctx, args)
	case "delete_vocab":
		return s.handleDeleteVocab(ctx, args)
	case "get_garbage_vocab":
		return s.handleGetGarbageVocab(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) sendResponse(resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}
	fmt.Fprintln(s.stdout, string(data))
}
