package dupescan

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies per-file failures accumulated during a run.
type ErrorKind int

const (
	// KindIO marks a file that could not be read, hashed or deleted. The
	// file is excluded from its group; the run continues.
	KindIO ErrorKind = iota

	// KindCache marks a cache open/read/write failure. The cache degrades
	// to cold (all-miss) behaviour; never fatal.
	KindCache

	// KindInvalidInput marks a malformed file record (e.g. non-positive
	// size). Only that record is rejected.
	KindInvalidInput
)

// String returns the human-readable name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "IOError"
	case KindCache:
		return "CacheError"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "unknown"
	}
}

// FileError records a per-file failure with its classification. FileErrors
// are collected into the run result rather than aborting the run.
type FileError struct {
	Path string    `json:"path"`
	Kind ErrorKind `json:"-"`
	Err  error     `json:"-"`
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the error with its kind for JSON reports.
func (e *FileError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Kind  string `json:"kind"`
		Error string `json:"error"`
	}{e.Path, e.Kind.String(), e.Err.Error()})
}

func newFileError(path string, kind ErrorKind, err error) *FileError {
	return &FileError{Path: path, Kind: kind, Err: err}
}
