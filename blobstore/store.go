package blobstore

import (
	"context"
	"errors"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	//
	// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
	// The default maps to `os.ErrNotExist`.
	ErrNotFound = os.ErrNotExist

	// ErrInvalidName is returned for blob names that are empty, absolute or
	// escape the store root.
	ErrInvalidName = errors.New("invalid blob name")
)

// Store persists whole blobs under slash-separated names.
//
// Put replaces a blob atomically: readers see either the previous or the
// new content. Delete of a missing blob is not an error. List returns the
// names with the given prefix in lexicographic order.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// ValidateName reports whether name is usable as a blob name.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return errInvalidName(name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return errInvalidName(name)
		}
	}
	return nil
}

func errInvalidName(name string) error {
	return &NameError{Name: name}
}

// NameError reports a rejected blob name.
type NameError struct {
	Name string
}

func (e *NameError) Error() string { return "invalid blob name: " + e.Name }

func (e *NameError) Is(target error) bool { return target == ErrInvalidName }

// ErrConflict is returned by PutIfNotExists when the blob already exists.
var ErrConflict = errors.New("blob already exists")

// ConditionalStore is implemented by stores that can create a blob only
// when it is absent.
type ConditionalStore interface {
	Store
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}
