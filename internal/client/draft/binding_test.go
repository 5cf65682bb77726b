package draft

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	key, value string
}

// recordingStore is an in-memory Store that remembers every write.
type recordingStore struct {
	mu       sync.Mutex
	data     map[string]string
	writes   []write
	writeErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{data: make(map[string]string)}
}

func (s *recordingStore) Read(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *recordingStore) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data[key] = value
	s.writes = append(s.writes, write{key, value})
	return nil
}

func (s *recordingStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type passLog struct {
	passes []Pass
}

func (l *passLog) observe(p Pass) { l.passes = append(l.passes, p) }

func (l *passLog) kindsFor(key string) []PassKind {
	var kinds []PassKind
	for _, p := range l.passes {
		if p.Key == key {
			kinds = append(kinds, p.Kind)
		}
	}
	return kinds
}

func TestBinding_LoadPrefersStoredDraft(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	store.data["k"] = "draft text"
	b := NewBinding(store)

	v, err := b.Load(ctx, "k", "server text")
	require.NoError(t, err)
	assert.Equal(t, "draft text", v)

	v, err = b.Load(ctx, "other", "server text")
	require.NoError(t, err)
	assert.Equal(t, "server text", v)
	assert.Equal(t, "other", b.Key())
}

func TestBinding_PassAfterLoadDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	log := &passLog{}
	b := NewBinding(store, WithObserver(log.observe))

	v, err := b.Load(ctx, "k", "loaded")
	require.NoError(t, err)

	kind, err := b.Commit(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, PassLoad, kind)
	assert.Empty(t, store.writes)

	kind, err = b.Commit(ctx, "loaded!")
	require.NoError(t, err)
	assert.Equal(t, PassSave, kind)
	assert.Equal(t, []write{{"k", "loaded!"}}, store.writes)
	assert.Equal(t, []PassKind{PassLoad, PassLoad, PassSave}, log.kindsFor("k"))
}

// Switching K1 -> K2 and loading K2's existing draft must neither write K2's
// value under K1 nor count K2's load as a user edit.
func TestBinding_SwitchDoesNotCrossKeys(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	store.data["K2"] = "k2 draft"
	log := &passLog{}
	b := NewBinding(store, WithObserver(log.observe))

	_, err := b.Load(ctx, "K1", "k1 server")
	require.NoError(t, err)
	_, err = b.Commit(ctx, "k1 server")
	require.NoError(t, err)
	_, err = b.Commit(ctx, "k1 edited")
	require.NoError(t, err)

	v, err := b.Load(ctx, "K2", "k2 server")
	require.NoError(t, err)
	assert.Equal(t, "k2 draft", v)

	// The pass following the switch still carries the previous surface's text.
	kind, err := b.Commit(ctx, "k1 edited")
	require.NoError(t, err)
	assert.Equal(t, PassLoad, kind)

	assert.Equal(t, "k1 edited", store.data["K1"])
	assert.Equal(t, "k2 draft", store.data["K2"])
	for _, w := range store.writes {
		if w.key == "K1" {
			assert.NotEqual(t, "k2 draft", w.value)
		}
		assert.NotEqual(t, "K2", w.key, "K2 must not be written during the switch")
	}
	assert.NotContains(t, log.kindsFor("K2"), PassSave)
}

func TestBinding_RapidSwitchesOnlyConsumeOneFlag(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	b := NewBinding(store)

	for _, k := range []string{"A", "B", "C"} {
		_, err := b.Load(ctx, k, "")
		require.NoError(t, err)
	}

	kind, err := b.Commit(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, PassLoad, kind)

	kind, err = b.Commit(ctx, "typed in C")
	require.NoError(t, err)
	assert.Equal(t, PassSave, kind)
	assert.Equal(t, []write{{"C", "typed in C"}}, store.writes)
}

func TestBinding_GateSuppressesWrites(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	open := false
	b := NewBinding(store, WithGate(func(string) bool { return open }))

	_, err := b.Load(ctx, "k", "")
	require.NoError(t, err)
	_, err = b.Commit(ctx, "")
	require.NoError(t, err)

	kind, err := b.Commit(ctx, "while locked")
	require.NoError(t, err)
	assert.Equal(t, PassSuppressed, kind)
	assert.Empty(t, store.writes)
	assert.Equal(t, "", b.Value())

	open = true
	kind, err = b.Commit(ctx, "unlocked")
	require.NoError(t, err)
	assert.Equal(t, PassSave, kind)
	assert.Equal(t, "unlocked", store.data["k"])
}

func TestBinding_UnboundSuppresses(t *testing.T) {
	store := newRecordingStore()
	b := NewBinding(store)

	kind, err := b.Commit(context.Background(), "orphan")
	require.NoError(t, err)
	assert.Equal(t, PassSuppressed, kind)
	assert.Empty(t, store.writes)
}

func TestBinding_ClearAndReset(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	b := NewBinding(store)

	_, err := b.Load(ctx, "k", "")
	require.NoError(t, err)
	_, _ = b.Commit(ctx, "")
	_, err = b.Commit(ctx, "text")
	require.NoError(t, err)

	require.NoError(t, b.Clear(ctx))
	_, ok := store.data["k"]
	assert.False(t, ok)

	b.Reset()
	assert.Equal(t, "", b.Key())
	require.NoError(t, b.Clear(ctx))
}

func TestBinding_WriteErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	store.writeErr = errors.New("disk full")
	b := NewBinding(store)

	_, err := b.Load(ctx, "k", "")
	require.NoError(t, err)
	_, _ = b.Commit(ctx, "")

	_, err = b.Commit(ctx, "text")
	assert.ErrorContains(t, err, "disk full")
}

func TestPassKind_String(t *testing.T) {
	assert.Equal(t, "load", PassLoad.String())
	assert.Equal(t, "save", PassSave.String())
	assert.Equal(t, "suppressed", PassSuppressed.String())
}
