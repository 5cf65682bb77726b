package draft

import (
	"context"
	"log/slog"
	"sync"
)

// PassKind classifies one pass of a Binding.
type PassKind int

const (
	// PassLoad is a pass caused by switching keys. It never writes.
	PassLoad PassKind = iota
	// PassSave is a user edit persisted under the current key.
	PassSave
	// PassSuppressed is an edit dropped because writes were gated off.
	PassSuppressed
)

func (k PassKind) String() string {
	switch k {
	case PassLoad:
		return "load"
	case PassSave:
		return "save"
	case PassSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Pass describes what a Binding did with one value.
type Pass struct {
	Kind  PassKind
	Key   string
	Value string
}

// Observer is told about every pass, after the store write (if any) returns.
type Observer func(Pass)

// Gate reports whether draft writes for key are currently allowed.
type Gate func(key string) bool

// Binding ties a draft Store to the key of the active document.
//
// Load switches the key and arms a one-shot "just loaded" flag. The next
// Commit consumes the flag and is classified as a load, so presenting the
// loaded value never writes it back, and a value staged for the previous key
// is never written under the new one. Later commits are saves.
type Binding struct {
	store    Store
	gate     Gate
	observer Observer
	logger   *slog.Logger

	mu         sync.Mutex
	key        string
	value      string
	justLoaded bool
}

// Option configures a Binding.
type Option func(*Binding)

// WithGate installs the write gate. Without one, every save pass writes.
func WithGate(g Gate) Option {
	return func(b *Binding) { b.gate = g }
}

// WithObserver installs a pass observer.
func WithObserver(o Observer) Option {
	return func(b *Binding) { b.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Binding) { b.logger = l }
}

// NewBinding creates an unbound Binding over store.
func NewBinding(store Store, opts ...Option) *Binding {
	b := &Binding{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load switches to key and returns the value to present: the stored draft,
// or fallback when there is none.
func (b *Binding) Load(ctx context.Context, key, fallback string) (string, error) {
	stored, err := b.store.Read(ctx, key)
	if err != nil {
		return fallback, err
	}
	value := fallback
	if stored != "" {
		value = stored
	}

	b.mu.Lock()
	b.key = key
	b.value = value
	b.justLoaded = true
	b.mu.Unlock()

	b.notify(Pass{Kind: PassLoad, Key: key, Value: value})
	return value, nil
}

// Commit runs the write pass for value under the current key.
func (b *Binding) Commit(ctx context.Context, value string) (PassKind, error) {
	b.mu.Lock()
	key := b.key
	if b.justLoaded {
		b.justLoaded = false
		b.value = value
		b.mu.Unlock()
		b.notify(Pass{Kind: PassLoad, Key: key, Value: value})
		return PassLoad, nil
	}
	if key == "" || (b.gate != nil && !b.gate(key)) {
		b.mu.Unlock()
		b.logger.Debug("draft write suppressed", "doc_id", key)
		b.notify(Pass{Kind: PassSuppressed, Key: key, Value: value})
		return PassSuppressed, nil
	}
	b.value = value
	b.mu.Unlock()

	if err := b.store.Write(ctx, key, value); err != nil {
		return PassSave, err
	}
	b.notify(Pass{Kind: PassSave, Key: key, Value: value})
	return PassSave, nil
}

// Clear removes the draft under the current key. Called after an explicit save.
func (b *Binding) Clear(ctx context.Context) error {
	b.mu.Lock()
	key := b.key
	b.mu.Unlock()
	if key == "" {
		return nil
	}
	return b.store.Clear(ctx, key)
}

// Reset unbinds the key without touching the store.
func (b *Binding) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.key = ""
	b.value = ""
	b.justLoaded = false
}

// Key returns the bound key, or "" when unbound.
func (b *Binding) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Value returns the last value loaded or committed.
func (b *Binding) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

func (b *Binding) notify(p Pass) {
	if b.observer != nil {
		b.observer(p)
	}
}
