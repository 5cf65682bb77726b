// Package transition guards the moment the active document changes. Every
// switch gets a new generation; async work carries the Token it started with
// and may only apply its result while that token is still current.
package transition

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrStaleResult marks a result dropped because a newer switch began.
	ErrStaleResult = errors.New("stale result discarded")
	// ErrTransitionInProgress is returned for writes attempted before the
	// current document finished loading.
	ErrTransitionInProgress = errors.New("document transition in progress")
)

// State of the edit surface.
type State int

const (
	Idle State = iota
	Transitioning
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Transitioning:
		return "transitioning"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Token identifies one switch.
type Token struct {
	Generation uint64
	DocID      string
}

// Controller is the per-surface state machine.
type Controller struct {
	logger *slog.Logger

	mu     sync.Mutex
	gen    uint64
	docID  string
	state  State
	err    error
	cancel context.CancelFunc
}

// New creates an idle Controller.
func New(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger}
}

// Begin starts a switch to docID. Any in-flight load is cancelled and its
// token goes stale. The returned context is cancelled by the next Begin or
// Reset and should be used for the load.
func (c *Controller) Begin(parent context.Context, docID string) (Token, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.docID = docID
	c.state = Transitioning
	c.err = nil
	c.cancel = cancel

	c.logger.Debug("transition begin", "doc_id", docID, "generation", c.gen)
	return Token{Generation: c.gen, DocID: docID}, ctx
}

// MarkLoading records that tok's document was not cached and a fetch is in flight.
func (c *Controller) MarkLoading(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(tok) || c.state != Transitioning {
		return false
	}
	c.state = Loading
	return true
}

// Complete moves to Loaded once tok's title and content have been applied.
// It returns false, changing nothing, when tok is stale.
func (c *Controller) Complete(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(tok) {
		c.logger.Debug("stale load discarded", "doc_id", tok.DocID, "generation", tok.Generation)
		return false
	}
	c.state = Loaded
	c.release()
	return true
}

// Fail records a load error for tok and releases the lock. Stale failures are ignored.
func (c *Controller) Fail(tok Token, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(tok) {
		return false
	}
	c.state = Failed
	c.err = err
	c.release()
	return true
}

// Reset returns to Idle, cancelling any load.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.docID = ""
	c.state = Idle
	c.err = nil
	c.release()
}

// IsCurrent reports whether tok belongs to the latest switch.
func (c *Controller) IsCurrent(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked(tok)
}

// Locked reports whether a switch is still in progress.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Transitioning || c.state == Loading
}

// LoadedFor reports whether docID is the current document and has finished loading.
// Draft and auto-save writes are allowed only while this holds.
func (c *Controller) LoadedFor(docID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Loaded && docID != "" && c.docID == docID
}

// Current returns the token of the latest switch.
func (c *Controller) Current() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Token{Generation: c.gen, DocID: c.docID}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the load error when the state is Failed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) currentLocked(tok Token) bool {
	return tok.Generation == c.gen && tok.DocID == c.docID
}

func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
