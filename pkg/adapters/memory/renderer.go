package memory

import (
	"context"
	"sync"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// Recorder implements ports.Renderer by keeping every diff it receives.
// Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	diffs []*domain.FrameDiff
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Render stores the diff.
func (r *Recorder) Render(_ context.Context, diff *domain.FrameDiff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diffs = append(r.diffs, diff)
	return nil
}

// Diffs returns the recorded diffs in order.
func (r *Recorder) Diffs() []*domain.FrameDiff {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.FrameDiff(nil), r.diffs...)
}

// Last returns the most recent diff, or nil.
func (r *Recorder) Last() *domain.FrameDiff {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.diffs) == 0 {
		return nil
	}
	return r.diffs[len(r.diffs)-1]
}

// Reset forgets every recorded diff.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diffs = nil
}
