package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
)

// Watch filters select which frame diffs a subscriber receives.
const (
	WatchTokens = "tokens" // added or removed tokens
	WatchMoves  = "moves"  // pixel movement
	WatchStage  = "stage"  // rotation and scale
)

type subscriber struct {
	ch    chan string
	watch []string
}

// StreamManager fans frame diffs out to SSE subscribers.
// It implements ports.Renderer, so it can be handed to every board directly.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{} // BoardID -> Set of subscribers
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a subscriber for boardID. An empty watch list receives everything.
func (sm *StreamManager) Subscribe(boardID string, watch ...string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sub := &subscriber{ch: make(chan string, 64), watch: watch}
	if _, ok := sm.subscribers[boardID]; !ok {
		sm.subscribers[boardID] = make(map[*subscriber]struct{})
	}
	sm.subscribers[boardID][sub] = struct{}{}

	return sub.ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[boardID]; ok {
			if _, ok := subs[sub]; !ok {
				return
			}
			delete(subs, sub)
			close(sub.ch)
			if len(subs) == 0 {
				delete(sm.subscribers, boardID)
			}
		}
	}
}

// Subscribers returns the number of subscribers for boardID.
func (sm *StreamManager) Subscribers(boardID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[boardID])
}

// Render broadcasts diff to the subscribers of its board. It never blocks the board.
func (sm *StreamManager) Render(_ context.Context, diff *domain.FrameDiff) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[diff.BoardID]
	if !ok {
		return nil
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("failed to marshal frame diff: %w", err)
	}
	msg := string(payload)

	for sub := range subs {
		if !matches(diff, sub.watch) {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping frame", "board_id", diff.BoardID)
		}
	}
	return nil
}

func matches(diff *domain.FrameDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case WatchTokens:
			if len(diff.Added) > 0 || len(diff.Removed) > 0 {
				return true
			}
		case WatchMoves:
			if len(diff.Moved) > 0 {
				return true
			}
		case WatchStage:
			if diff.StageRotation != nil || diff.CounterRotation != nil || diff.StageScale != nil {
				return true
			}
		}
	}
	return false
}

// SubscribeEvents handles the GET /boards/{id}/events request (SSE).
// The optional "watch" query parameter is a comma-separated list of tokens, moves, stage.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Manager.Get(id); err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		watch = strings.Split(v, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id, watch...)
	defer cancel()
	s.logger.Info("SSE: Subscribing to board frames", "board_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "board_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: frame\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
