// Package http exposes boards hosted by a session.Manager as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
	"github.com/aretw0/boardwalk/pkg/session"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 64 * 1024

// Server serves the board API.
type Server struct {
	Manager *session.Manager
	Streams *StreamManager

	book     ports.PositionBook
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithPositionBook enables GET /positions and named positions in requests.
func WithPositionBook(book ports.PositionBook) Option {
	return func(s *Server) {
		s.book = book
	}
}

// WithMetrics mounts GET /metrics for the given gatherer (e.g. prometheus.DefaultGatherer).
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server over manager.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		Manager: manager,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	return NewServer(manager, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/positions", s.ListPositions)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/boards", func(r chi.Router) {
		r.Get("/", s.ListBoards)
		r.Post("/", s.CreateBoard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetBoard)
			r.Delete("/", s.DeleteBoard)
			r.Put("/position", s.SetPosition)
			r.Post("/moves", s.Move)
			r.Get("/squares/{label}", s.GetSquare)
			r.Post("/rotate", s.Rotate)
			r.Put("/rotation", s.SetRotation)
			r.Put("/scale", s.Scale)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Request / response bodies --

// PositionRequest selects a position by notation (or preset) or by book name.
type PositionRequest struct {
	Position string `json:"position,omitempty"`
	Name     string `json:"name,omitempty"`
}

// MovesRequest is the body of POST /boards/{id}/moves.
type MovesRequest struct {
	Moves []boardwalk.MoveRequest `json:"moves"`
}

// RotateRequest is the body of POST /boards/{id}/rotate.
type RotateRequest struct {
	Delta int `json:"delta"`
}

// RotationRequest is the body of PUT /boards/{id}/rotation.
type RotationRequest struct {
	Angle float64 `json:"angle"`
}

// ScaleRequest is the body of PUT /boards/{id}/scale.
type ScaleRequest struct {
	Factor float64 `json:"factor"`
}

// BoardResponse describes a board.
type BoardResponse struct {
	ID       string               `json:"id"`
	Notation string               `json:"notation"`
	Files    int                  `json:"files"`
	Ranks    int                  `json:"ranks"`
	Idle     bool                 `json:"idle"`
	Rotation domain.RotationState `json:"rotation"`
	Scene    domain.Scene         `json:"scene"`
}

// PlanResponse reports a resolution.
type PlanResponse struct {
	Stay     []string `json:"stay"`
	Moves    []string `json:"moves"`
	Creates  []string `json:"creates"`
	Discards []string `json:"discards"`
}

// TokenResponse describes one token on a square.
type TokenResponse struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Moving bool         `json:"moving"`
	Pixel  domain.Point `json:"pixel"`
}

// -- Handlers --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "boardwalk-http",
		"version": strings.TrimSpace(boardwalk.Version),
	})
}

// ListPositions handles the GET /positions request.
func (s *Server) ListPositions(w http.ResponseWriter, r *http.Request) {
	if s.book == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	names, err := s.book.List(r.Context())
	if err != nil {
		s.fail(w, "ListPositions", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// ListBoards handles the GET /boards request.
func (s *Server) ListBoards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Manager.List())
}

// CreateBoard handles the POST /boards request. The body is optional.
func (s *Server) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var body PositionRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, &body) {
			return
		}
	}
	notation, err := s.notation(r.Context(), body)
	if err != nil {
		s.fail(w, "CreateBoard", err)
		return
	}

	d, err := s.Manager.Create(boardwalk.WithRenderer(s.Streams))
	if err != nil {
		s.fail(w, "CreateBoard", err)
		return
	}

	var resp BoardResponse
	err = d.Do(r.Context(), func(b *boardwalk.Board) error {
		if notation != "" {
			if _, err := b.ResolvePosition(r.Context(), notation); err != nil {
				return err
			}
		}
		resp, err = describe(b)
		return err
	})
	if err != nil {
		_ = s.Manager.Delete(d.ID())
		s.fail(w, "CreateBoard", err)
		return
	}
	w.Header().Set("Location", "/boards/"+d.ID())
	writeJSON(w, http.StatusCreated, resp)
}

// GetBoard handles the GET /boards/{id} request.
func (s *Server) GetBoard(w http.ResponseWriter, r *http.Request) {
	var resp BoardResponse
	err := s.Manager.WithBoard(r.Context(), chi.URLParam(r, "id"), func(b *boardwalk.Board) error {
		var err error
		resp, err = describe(b)
		return err
	})
	if err != nil {
		s.fail(w, "GetBoard", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteBoard handles the DELETE /boards/{id} request.
func (s *Server) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteBoard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPosition handles the PUT /boards/{id}/position request.
func (s *Server) SetPosition(w http.ResponseWriter, r *http.Request) {
	var body PositionRequest
	if !s.decode(w, r, &body) {
		return
	}
	notation, err := s.notation(r.Context(), body)
	if err != nil {
		s.fail(w, "SetPosition", err)
		return
	}
	if notation == "" {
		s.fail(w, "SetPosition", &domain.NotationError{Reason: "position or name is required"})
		return
	}

	var resp PlanResponse
	err = s.Manager.WithBoard(r.Context(), chi.URLParam(r, "id"), func(b *boardwalk.Board) error {
		res, err := b.ResolvePosition(r.Context(), notation)
		if err != nil {
			return err
		}
		resp = planResponse(b.Geometry(), res.Plan)
		return nil
	})
	if err != nil {
		s.fail(w, "SetPosition", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Move handles the POST /boards/{id}/moves request.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	var body MovesRequest
	if !s.decode(w, r, &body) {
		return
	}

	var moved int
	err := s.Manager.WithBoard(r.Context(), chi.URLParam(r, "id"), func(b *boardwalk.Board) error {
		var err error
		moved, err = b.MoveBatch(r.Context(), body.Moves)
		return err
	})
	if err != nil {
		s.fail(w, "Move", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"moved": moved})
}

// GetSquare handles the GET /boards/{id}/squares/{label} request.
func (s *Server) GetSquare(w http.ResponseWriter, r *http.Request) {
	var resp []TokenResponse
	err := s.Manager.WithBoard(r.Context(), chi.URLParam(r, "id"), func(b *boardwalk.Board) error {
		tokens, err := b.TokensAt(chi.URLParam(r, "label"))
		if err != nil {
			return err
		}
		resp = make([]TokenResponse, 0, len(tokens))
		for _, t := range tokens {
			resp = append(resp, TokenResponse{ID: t.ID.String(), Label: t.Label, Moving: t.Moving, Pixel: t.Position})
		}
		return nil
	})
	if err != nil {
		s.fail(w, "GetSquare", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Rotate handles the POST /boards/{id}/rotate request.
func (s *Server) Rotate(w http.ResponseWriter, r *http.Request) {
	var body RotateRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.rotation(w, r, "Rotate", func(ctx context.Context, b *boardwalk.Board) error {
		return b.Rotate(ctx, body.Delta)
	})
}

// SetRotation handles the PUT /boards/{id}/rotation request.
func (s *Server) SetRotation(w http.ResponseWriter, r *http.Request) {
	var body RotationRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.rotation(w, r, "SetRotation", func(ctx context.Context, b *boardwalk.Board) error {
		return b.SetRotation(ctx, body.Angle)
	})
}

// Scale handles the PUT /boards/{id}/scale request.
func (s *Server) Scale(w http.ResponseWriter, r *http.Request) {
	var body ScaleRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.rotation(w, r, "Scale", func(ctx context.Context, b *boardwalk.Board) error {
		return b.Scale(ctx, body.Factor)
	})
}

// rotation applies a stage transform command and responds with the rotation state.
func (s *Server) rotation(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *boardwalk.Board) error) {
	var state domain.RotationState
	err := s.Manager.WithBoard(r.Context(), chi.URLParam(r, "id"), func(b *boardwalk.Board) error {
		if err := fn(r.Context(), b); err != nil {
			return err
		}
		state = b.Rotation()
		return nil
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// -- Helpers --

func (s *Server) notation(ctx context.Context, body PositionRequest) (string, error) {
	if body.Name == "" {
		return body.Position, nil
	}
	if body.Position != "" {
		return "", &domain.NotationError{Reason: "position and name are mutually exclusive"}
	}
	if s.book == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrPositionNotFound, body.Name)
	}
	p, err := s.book.Get(ctx, body.Name)
	if err != nil {
		return "", err
	}
	return p.Notation, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBoardNotFound),
		errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidLabel),
		errors.Is(err, domain.ErrInvalidNotation),
		errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRotationInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDriverStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func describe(b *boardwalk.Board) (BoardResponse, error) {
	text, err := b.Notation()
	if err != nil {
		return BoardResponse{}, err
	}
	g := b.Geometry()
	return BoardResponse{
		ID:       b.ID,
		Notation: text,
		Files:    g.Files,
		Ranks:    g.Ranks,
		Idle:     b.Idle(),
		Rotation: b.Rotation(),
		Scene:    b.Scene(),
	}, nil
}

func planResponse(g domain.Geometry, p boardwalk.Plan) PlanResponse {
	resp := PlanResponse{
		Stay:     make([]string, 0, len(p.Stay)),
		Moves:    make([]string, 0, len(p.Moves)),
		Creates:  make([]string, 0, len(p.Creates)),
		Discards: make([]string, 0, len(p.Discards)),
	}
	for _, a := range p.Stay {
		resp.Stay = append(resp.Stay, a.Label+"@"+g.Label(a.To))
	}
	for _, a := range p.Moves {
		resp.Moves = append(resp.Moves, a.Label+"@"+g.Label(a.From)+"-"+g.Label(a.To))
	}
	for _, c := range p.Creates {
		resp.Creates = append(resp.Creates, c.Label+"@"+g.Label(c.Cell))
	}
	for _, id := range p.Discards {
		resp.Discards = append(resp.Discards, id.String())
	}
	return resp
}
