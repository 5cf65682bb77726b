// Package autosave coalesces rapid edits into one delayed content save per
// quiet period (trailing-edge debounce).
package autosave

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a save fires.
const DefaultDelay = 500 * time.Millisecond

// Request is one observed edit. Generation is carried through to the save
// callback untouched so the caller can detect a save that outlived its document.
type Request struct {
	DocID      string
	Title      string
	Content    string
	Generation uint64
}

// SaveFunc persists a request. Errors are logged; the next edit retries.
type SaveFunc func(ctx context.Context, req Request) error

// Gate reports whether docID may be saved right now.
type Gate func(docID string) bool

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that runs f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler holds at most one pending save.
type Scheduler struct {
	delay     time.Duration
	save      SaveFunc
	gate      Gate
	afterFunc AfterFunc
	baseCtx   context.Context
	logger    *slog.Logger

	mu      sync.Mutex
	timer   Timer
	pending *Request
	seq     uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithGate installs a gate checked both when scheduling and when firing.
func WithGate(g Gate) Option {
	return func(s *Scheduler) { s.gate = g }
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = f }
}

// WithContext sets the context passed to SaveFunc.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) { s.baseCtx = ctx }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a Scheduler. A non-positive delay means DefaultDelay.
func New(delay time.Duration, save SaveFunc, opts ...Option) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{
		delay:     delay,
		save:      save,
		afterFunc: realAfterFunc,
		baseCtx:   context.Background(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule replaces any pending save with req and restarts the delay. A
// request with no document, a blank title, or a closed gate cancels the
// pending save instead. It reports whether req is now pending.
func (s *Scheduler) Schedule(req Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if req.DocID == "" || strings.TrimSpace(req.Title) == "" {
		return false
	}
	if s.gate != nil && !s.gate(req.DocID) {
		s.logger.Debug("autosave not scheduled, document not live", "doc_id", req.DocID)
		return false
	}

	s.pending = &req
	s.seq++
	seq := s.seq
	s.timer = s.afterFunc(s.delay, func() { s.fire(seq) })
	return true
}

// Cancel drops the pending save, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Flush runs the pending save now instead of waiting. It reports whether a
// save was attempted.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	seq := s.seq
	hasPending := s.pending != nil
	s.mu.Unlock()
	if !hasPending {
		return false
	}
	return s.fire(seq)
}

// Pending reports whether a save is waiting on the timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Delay returns the configured quiet period.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

func (s *Scheduler) fire(seq uint64) bool {
	s.mu.Lock()
	if seq != s.seq || s.pending == nil {
		s.mu.Unlock()
		return false
	}
	req := *s.pending
	s.stopLocked()
	s.mu.Unlock()

	if s.gate != nil && !s.gate(req.DocID) {
		s.logger.Debug("autosave dropped, document no longer live", "doc_id", req.DocID)
		return false
	}

	if err := s.save(s.baseCtx, req); err != nil {
		s.logger.Warn("autosave failed", "doc_id", req.DocID, "error", err)
	}
	return true
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}
