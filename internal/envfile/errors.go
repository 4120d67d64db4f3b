package envfile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced file does not exist or is not a regular file.
	ErrNotFound = errors.New("file not found")
	// ErrIO indicates a read, write or copy failure.
	ErrIO = errors.New("i/o error")
	// ErrParse indicates an invalid key or an unterminated multi-line value.
	ErrParse = errors.New("parse error")
	// ErrNoTarget indicates Save was called without a path and nothing was loaded.
	ErrNoTarget = errors.New("no target path")
)

// ParseError always names the key involved.
type ParseError struct {
	Line   int
	Key    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Key)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Key)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

func notFound(path string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
