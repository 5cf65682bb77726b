package docsystem

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MakePatch returns the patch from one content to another in diff-match-patch text format.
func MakePatch(from, to string) string {
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(from, to))
}

// ApplyPatches replays patches in order starting from origin.
// Any hunk that fails to apply is an error.
func ApplyPatches(origin string, patches []string) (string, error) {
	dmp := diffmatchpatch.New()
	content := origin
	for i, text := range patches {
		parsed, err := dmp.PatchFromText(text)
		if err != nil {
			return "", fmt.Errorf("parse patch %d: %w", i+1, err)
		}
		next, applied := dmp.PatchApply(parsed, content)
		for _, ok := range applied {
			if !ok {
				return "", fmt.Errorf("patch %d does not apply cleanly", i+1)
			}
		}
		content = next
	}
	return content, nil
}
