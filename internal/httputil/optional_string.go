package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON merge-patch field. Absent leaves the stored value alone,
// null clears it, anything else replaces it.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// OptionalString is the patch field used for nullable text columns.
type OptionalString = Optional[string]

// UnmarshalJSON only runs for keys present in the body.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	o.Value = v
	return nil
}

// Cleared reports an explicit null.
func (o Optional[T]) Cleared() bool {
	return o.Present && o.Value == nil
}
