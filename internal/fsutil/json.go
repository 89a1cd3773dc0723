package fsutil

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ReadJSON best-effort reads path into out; a missing file is not an error.
// It reports whether the file existed.
func ReadJSON(path string, out any) (bool, error) {
	b, err := ReadFile(path)
	if err != nil {
		return false, err
	}
	if b == nil { // file didn’t exist
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return true, errors.Wrapf(err, "decode %s", path)
	}
	return true, nil
}

// WriteJSON writes v as indented JSON via WriteFileAtomic.
func WriteJSON(path string, v any, mode os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return WriteFileAtomic(path, b, mode)
}
