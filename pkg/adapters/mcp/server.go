// Package mcp exposes one board as a Model Context Protocol tool server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
	"github.com/aretw0/boardwalk/pkg/session"
)

// BoardURI is the resource exposing the board scene.
const BoardURI = "boardwalk://board"

// PositionResponse provides a unified structure across tools that change the board.
type PositionResponse struct {
	Notation string      `json:"notation" jsonschema_description:"The board position in notation text"`
	Idle     bool        `json:"idle" jsonschema_description:"True when nothing is moving, rotating or loading"`
	Plan     *PlanResult `json:"plan,omitempty" jsonschema_description:"The assignment computed for a position change"`
	Moved    int         `json:"moved,omitempty" jsonschema_description:"Number of tokens a move relocated"`
}

// PlanResult lists the plan entries as "<label>@<square>" strings.
type PlanResult struct {
	Stay     []string `json:"stay"`
	Moves    []string `json:"moves"`
	Creates  []string `json:"creates"`
	Discards int      `json:"discards"`
}

// SquareResponse lists the tokens on one square.
type SquareResponse struct {
	Square string   `json:"square" jsonschema_description:"The queried square label"`
	Labels []string `json:"labels" jsonschema_description:"Token labels on the square, in scan order"`
}

// RotationResponse reports the stage transform.
type RotationResponse struct {
	Angle float64      `json:"angle" jsonschema_description:"Stage rotation in degrees"`
	Phase domain.Phase `json:"phase" jsonschema_description:"Rotation phase"`
	Scale float64      `json:"scale" jsonschema_description:"Effective stage scale"`
}

// Server wraps a session driver and exposes it as an MCP Server.
type Server struct {
	driver    *session.Driver
	book      ports.PositionBook
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithPositionBook enables list_positions and named positions in set_position.
func WithPositionBook(book ports.PositionBook) Option {
	return func(s *Server) {
		s.book = book
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance over a running driver.
func NewServer(driver *session.Driver, opts ...Option) *Server {
	s := &Server{
		driver:    driver,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("boardwalk-mcp", strings.TrimSpace(boardwalk.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	// Start the SSE server
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_position
	s.mcpServer.AddTool(mcp.NewTool("get_position",
		mcp.WithDescription("Get the current board position in notation text."),
		mcp.WithOutputSchema[PositionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetPosition))

	// TOOL: set_position
	s.mcpServer.AddTool(mcp.NewTool("set_position",
		mcp.WithDescription("Transition the board to a new position, reusing tokens where possible. "+
			"Ranks are separated by '/', top rank first; digits are runs of empty squares; "+
			"[a b] is a square holding several tokens. Presets: start, empty."),
		mcp.WithString("position", mcp.Description("Notation text or preset name")),
		mcp.WithString("name", mcp.Description("Name of a stored position (instead of position)")),
		mcp.WithOutputSchema[PositionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetPosition))

	// TOOL: move
	s.mcpServer.AddTool(mcp.NewTool("move",
		mcp.WithDescription("Move the token on one square to another square, e.g. from E2 to E4."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source square label")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination square label")),
		mcp.WithString("label", mcp.Description("Token label to pick when the source holds several tokens")),
		mcp.WithOutputSchema[PositionResponse](),
	), mcp.NewStructuredToolHandler(s.handleMove))

	// TOOL: query_token
	s.mcpServer.AddTool(mcp.NewTool("query_token",
		mcp.WithDescription("List the tokens on a square."),
		mcp.WithString("square", mcp.Required(), mcp.Description("Square label, e.g. H3")),
		mcp.WithOutputSchema[SquareResponse](),
	), mcp.NewStructuredToolHandler(s.handleQueryToken))

	// TOOL: rotate
	s.mcpServer.AddTool(mcp.NewTool("rotate",
		mcp.WithDescription("Rotate the board by a number of degrees with the squeeze-turn-enlarge animation."),
		mcp.WithNumber("degrees", mcp.Required(), mcp.Description("Rotation delta in whole degrees, may be negative")),
		mcp.WithOutputSchema[RotationResponse](),
	), mcp.NewStructuredToolHandler(s.handleRotate))

	// TOOL: list_positions
	s.mcpServer.AddTool(mcp.NewTool("list_positions",
		mcp.WithDescription("List the names of stored positions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.book == nil {
			return mcp.NewToolResultText("[]"), nil
		}
		names, err := s.book.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleGetPosition(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PositionResponse, error) {
	var resp PositionResponse
	err := s.driver.Do(ctx, func(b *boardwalk.Board) error {
		var err error
		resp, err = positionOf(b)
		return err
	})
	return resp, err
}

func (s *Server) handleSetPosition(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PositionResponse, error) {
	position, _ := args["position"].(string)
	name, _ := args["name"].(string)

	if name != "" {
		if s.book == nil {
			return PositionResponse{}, fmt.Errorf("%w: %s", domain.ErrPositionNotFound, name)
		}
		p, err := s.book.Get(ctx, name)
		if err != nil {
			return PositionResponse{}, err
		}
		position = p.Notation
	}
	if position == "" {
		return PositionResponse{}, fmt.Errorf("one of position or name is required")
	}

	var resp PositionResponse
	err := s.driver.Do(ctx, func(b *boardwalk.Board) error {
		res, err := b.ResolvePosition(ctx, position)
		if err != nil {
			return err
		}
		resp, err = positionOf(b)
		resp.Plan = planOf(b.Geometry(), res.Plan)
		return err
	})
	if err != nil {
		s.logger.Warn("MCP set_position rejected", "err", err)
		return PositionResponse{}, fmt.Errorf("set_position failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PositionResponse, error) {
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)
	label, _ := args["label"].(string)

	var resp PositionResponse
	err := s.driver.Do(ctx, func(b *boardwalk.Board) error {
		n, err := b.MoveBatch(ctx, []boardwalk.MoveRequest{{Label: label, From: from, To: to}})
		if err != nil {
			return err
		}
		resp, err = positionOf(b)
		resp.Moved = n
		return err
	})
	if err != nil {
		return PositionResponse{}, fmt.Errorf("move failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleQueryToken(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SquareResponse, error) {
	square, _ := args["square"].(string)

	resp := SquareResponse{Square: square, Labels: []string{}}
	err := s.driver.Do(ctx, func(b *boardwalk.Board) error {
		tokens, err := b.TokensAt(square)
		if err != nil {
			return err
		}
		for _, t := range tokens {
			resp.Labels = append(resp.Labels, t.Label)
		}
		return nil
	})
	if err != nil {
		return SquareResponse{}, fmt.Errorf("query_token failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleRotate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RotationResponse, error) {
	degrees, ok := args["degrees"].(float64)
	if !ok || degrees != float64(int(degrees)) {
		return RotationResponse{}, &domain.ConfigError{Field: "degrees", Reason: "must be a whole number", Value: args["degrees"]}
	}

	var resp RotationResponse
	err := s.driver.Do(ctx, func(b *boardwalk.Board) error {
		if err := b.Rotate(ctx, int(degrees)); err != nil {
			return err
		}
		r := b.Rotation()
		resp = RotationResponse{Angle: r.Angle, Phase: r.Phase, Scale: b.Scene().StageScale}
		return nil
	})
	if err != nil {
		return RotationResponse{}, fmt.Errorf("rotate failed: %w", err)
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: boardwalk://board
	s.mcpServer.AddResource(mcp.NewResource(BoardURI, "Current Board Scene",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var scene domain.Scene
		if err := s.driver.Do(ctx, func(b *boardwalk.Board) error {
			scene = b.Scene()
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to read board: %w", err)
		}
		jsonBytes, _ := json.Marshal(scene)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      BoardURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func positionOf(b *boardwalk.Board) (PositionResponse, error) {
	text, err := b.Notation()
	if err != nil {
		return PositionResponse{}, err
	}
	return PositionResponse{Notation: text, Idle: b.Idle()}, nil
}

func planOf(g domain.Geometry, p boardwalk.Plan) *PlanResult {
	res := &PlanResult{
		Stay:     []string{},
		Moves:    []string{},
		Creates:  []string{},
		Discards: len(p.Discards),
	}
	for _, a := range p.Stay {
		res.Stay = append(res.Stay, a.Label+"@"+g.Label(a.To))
	}
	for _, a := range p.Moves {
		res.Moves = append(res.Moves, a.Label+"@"+g.Label(a.From)+"-"+g.Label(a.To))
	}
	for _, c := range p.Creates {
		res.Creates = append(res.Creates, c.Label+"@"+g.Label(c.Cell))
	}
	return res
}
