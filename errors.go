package stile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingFile is matched by *MissingFileError.
	ErrMissingFile = errors.New("missing file")

	// ErrMalformedInput is matched by *MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")

	// ErrSchemaMismatch is matched by *SchemaMismatchError.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnknownObjectType is matched by *UnknownObjectTypeError.
	ErrUnknownObjectType = errors.New("unknown object type")

	// ErrUnimplemented is matched by *UnimplementedError.
	ErrUnimplemented = errors.New("unimplemented")
)

// MissingFileError indicates that a reference claims to point at a file
// which does not exist.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type MissingFileError struct {
	Path  string
	cause error
}

// NewMissingFileError returns a MissingFileError for path.
func NewMissingFileError(path string, cause error) *MissingFileError {
	return &MissingFileError{Path: path, cause: cause}
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing file: %s", e.Path)
}

func (e *MissingFileError) Unwrap() error { return e.cause }

// Is reports whether target is ErrMissingFile.
func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

// MalformedInputError indicates an unsupported or mixed input shape.
type MalformedInputError struct {
	Reason string
	cause  error
}

// NewMalformedInputError returns a MalformedInputError with a formatted reason.
func NewMalformedInputError(format string, args ...any) *MalformedInputError {
	return &MalformedInputError{Reason: fmt.Sprintf(format, args...)}
}

// WrapMalformedInput attaches cause to a MalformedInputError.
func WrapMalformedInput(cause error, reason string) *MalformedInputError {
	return &MalformedInputError{Reason: reason, cause: cause}
}

func (e *MalformedInputError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.cause)
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.cause }

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// SchemaMismatchError indicates that a field schema could not be applied or
// reconciled.
//
// Field and Positions are set when a single field is the culprit.
type SchemaMismatchError struct {
	Field     string
	Positions []int
	Reason    string
}

func (e *SchemaMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("schema mismatch")
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
		if len(e.Positions) > 0 {
			pos := append([]int(nil), e.Positions...)
			sort.Ints(pos)
			fmt.Fprintf(&b, " at positions %v", pos)
		}
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is reports whether target is ErrSchemaMismatch.
func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// UnknownObjectTypeError indicates a mask name outside the known object classes.
type UnknownObjectTypeError struct {
	Name string
}

func (e *UnknownObjectTypeError) Error() string {
	return fmt.Sprintf("unknown object type: %q", e.Name)
}

// Is reports whether target is ErrUnknownObjectType.
func (e *UnknownObjectTypeError) Is(target error) bool { return target == ErrUnknownObjectType }

// UnimplementedError marks an adapter variant that is intentionally not supported.
type UnimplementedError struct {
	Feature string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("unimplemented: %s", e.Feature)
}

// Is reports whether target is ErrUnimplemented.
func (e *UnimplementedError) Is(target error) bool { return target == ErrUnimplemented }
