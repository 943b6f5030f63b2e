// Package pathutils has helpers for resolving paths and reading json files.
package pathutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

var ErrJsonUnmarshal = errors.New("invalid json")

// Absdir is an absolute directory.
type Absdir string

// Join treats elem as the tail of the absolute directory.
// Absdir("/foo").Join("x", "y") => "/foo/x/y"
func (kd Absdir) Join(elem ...string) string {
	return filepath.Join(append([]string{string(kd)}, elem...)...)
}

// ResolvePath returns path if it is an absolute path,
// or the abspath joined with base otherwise.
// Use "" for base to use the cwd, as per filepath.Abs.
func ResolvePath(base, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(base, path))
}

// IsPathError returns true if err is present, and it or its cause is an *os.PathError.
func IsPathError(err error) bool {
	var pe *os.PathError
	return err != nil && errors.As(errors.Cause(err), &pe)
}

// IsJsonError returns true if err came from decoding json in UnmarshalJsonFile.
func IsJsonError(err error) bool {
	return errors.Cause(err) == ErrJsonUnmarshal
}

// UnmarshalJsonFile unmarshals the data at path into the pointer v.
func UnmarshalJsonFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		// The json package doesn't have a base error type, so wrap it here.
		return errors.Wrap(ErrJsonUnmarshal, err.Error())
	}
	return nil
}

// MarshalJsonFile marshals v into path, creating intermediate dirs.
func MarshalJsonFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CallerDir returns the directory of the calling code.
func CallerDir() Absdir {
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		panic("runtime.Caller failed")
	}
	return Absdir(filepath.Dir(filename))
}
