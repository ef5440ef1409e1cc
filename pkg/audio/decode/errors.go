// ABOUTME: Decoder error taxonomy
// ABOUTME: Sentinel kinds and a typed error carrying path and backend
package decode

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
)

// Failure kinds reported by Decode. Match them with errors.Is.
var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnsupportedLayout = errors.New("unsupported channel layout")
	ErrCorruptStream     = errors.New("corrupt stream")
)

// Error describes a failed decode
type Error struct {
	Kind    error
	Path    string
	Backend string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s (%s): %v", e.Path, e.Backend, e.Kind)
	}
	return fmt.Sprintf("decode %s (%s): %v: %v", e.Path, e.Backend, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path, backend string, err error) *Error {
	return &Error{Kind: kind, Path: path, Backend: backend, Err: err}
}

// layoutError builds the error for sources with more than two channels
func layoutError(path, backend string, channels int) *Error {
	return newError(ErrUnsupportedLayout, path, backend,
		fmt.Errorf("%d channels: %w", channels, audio.ErrLayout))
}

// kindOf returns the failure kind of err, or ErrCorruptStream when err does not
// carry one
func kindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrUnsupportedFormat, ErrUnsupportedLayout, ErrCorruptStream} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrCorruptStream
}
