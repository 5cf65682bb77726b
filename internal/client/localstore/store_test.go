package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	s := setupTestStore(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("draft:a", []byte("hello")))
	v, ok, err := s.Get("draft:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", string(v))

	require.NoError(t, s.Delete("draft:a"))
	require.NoError(t, s.Delete("draft:a"))
	_, ok, err = s.Get("draft:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_EmptyValueIsPresent(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Set("draft:a", []byte{}))
	v, ok, err := s.Get("draft:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestStore_JSON(t *testing.T) {
	s := setupTestStore(t)

	type blob struct {
		Tabs   []string `json:"tabs"`
		Active string   `json:"active"`
	}
	require.NoError(t, s.SetJSON("tabs:state", blob{Tabs: []string{"a", "b"}, Active: "b"}))

	var got blob
	ok, err := s.GetJSON("tabs:state", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got.Tabs)
	assert.Equal(t, "b", got.Active)
}

func TestStore_GetJSONDiscardsCorruptEntry(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Set("settings", []byte("{not json")))

	var got map[string]any
	ok, err := s.GetJSON("settings", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	_, present, err := s.Get("settings")
	require.NoError(t, err)
	assert.False(t, present, "corrupt entry should be removed")
}

func TestStore_KeysAndDeletePrefix(t *testing.T) {
	s := setupTestStore(t)
	for _, k := range []string{"draft:b", "draft:a", "tabs:state", "settings"} {
		require.NoError(t, s.Set(k, []byte("x")))
	}

	keys, err := s.Keys("draft:")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft:a", "draft:b"}, keys)

	n, err := s.DeletePrefix("draft:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err = s.Keys("draft:")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, ok, err := s.Get("tabs:state")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set("draft:a", []byte("kept")))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("draft:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", string(v))
}

func TestOpenInMemory(t *testing.T) {
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("k", []byte("v")))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))
}
