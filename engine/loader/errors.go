package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why an import failed.
type ErrorKind int

const (
	// KindMalformedDocument means the document does not match the glTF schema: invalid JSON,
	// a missing required field, an unknown enum code, or data that does not fit its declared range.
	KindMalformedDocument ErrorKind = iota + 1
	// KindUnresolvedReference means an index points outside the array it refers to.
	KindUnresolvedReference
	// KindIoFailure means the document, a buffer, or an image file could not be read.
	KindIoFailure
	// KindUnsupportedFeature means the input is valid glTF that this importer does not handle.
	KindUnsupportedFeature
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedDocument:
		return "malformed document"
	case KindUnresolvedReference:
		return "unresolved reference"
	case KindIoFailure:
		return "io failure"
	case KindUnsupportedFeature:
		return "unsupported feature"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinel errors, one per ErrorKind. Every *ImportError matches its kind's sentinel via errors.Is.
var (
	ErrMalformedDocument   = errors.New("malformed glTF document")
	ErrUnresolvedReference = errors.New("unresolved glTF reference")
	ErrIoFailure           = errors.New("glTF resource unreadable")
	ErrUnsupportedFeature  = errors.New("unsupported glTF feature")
)

var kindSentinels = map[ErrorKind]error{
	KindMalformedDocument:   ErrMalformedDocument,
	KindUnresolvedReference: ErrUnresolvedReference,
	KindIoFailure:           ErrIoFailure,
	KindUnsupportedFeature:  ErrUnsupportedFeature,
}

// ImportError is the error type returned by every import stage.
type ImportError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Path is the file involved: the document, or the buffer/image file that failed to load.
	Path string

	// Entity names the glTF object that failed (e.g., "accessor", "material"). Empty for document-level errors.
	Entity string

	// Index is the index of Entity in its document array. Only meaningful when Entity is set.
	Index int

	// Err is the underlying cause.
	Err error
}

func (e *ImportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Entity != "" {
		fmt.Fprintf(&b, ": %s %d", e.Entity, e.Index)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ImportError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the ErrorKind of the first *ImportError in err's chain.
//
// Parameters:
//   - err: the error to inspect
//
// Returns:
//   - ErrorKind: the kind, or 0 if err carries no *ImportError
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}

func newError(kind ErrorKind, entity string, index int, format string, args ...any) *ImportError {
	return &ImportError{Kind: kind, Entity: entity, Index: index, Err: fmt.Errorf(format, args...)}
}

func malformed(entity string, index int, format string, args ...any) *ImportError {
	return newError(KindMalformedDocument, entity, index, format, args...)
}

func unresolved(entity string, index int, format string, args ...any) *ImportError {
	return newError(KindUnresolvedReference, entity, index, format, args...)
}

func unsupported(entity string, index int, format string, args ...any) *ImportError {
	return newError(KindUnsupportedFeature, entity, index, format, args...)
}

func ioFailure(path string, err error) *ImportError {
	return &ImportError{Kind: KindIoFailure, Path: path, Err: err}
}

// withPath stamps a document path onto err if it is an *ImportError without one.
func withPath(err error, path string) error {
	var ie *ImportError
	if errors.As(err, &ie) && ie.Path == "" {
		ie.Path = path
	}
	return err
}
