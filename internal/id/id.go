package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for client-generated ids.
const (
	PrefixTab  = "tab"
	PrefixTemp = "tmp"
)

// Generate creates a prefixed unique ID using NanoID, e.g. "tab-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewTemp returns a placeholder id for an optimistic entry that has no server id yet.
func NewTemp() string {
	return MustGenerate(PrefixTemp)
}

// IsTemp reports whether id was produced by NewTemp.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, PrefixTemp+"-")
}
