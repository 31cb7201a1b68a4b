package store

import (
	"fmt"
	"os"
)

// WriteAtomic stages data in a temporary sibling file and promotes it with
// an atomic rename. On failure the previous canonical content is left
// intact and the temporary artifact is removed.
func WriteAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("promote %s: %w", tmp, err)
	}
	return nil
}
