package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotNotFound is returned by a SnapshotStore that has no
	// snapshot for the requested version
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrDocsUnavailable matches every DocsUnavailableError
	ErrDocsUnavailable = errors.New("documentation unavailable")
)

// DocsUnavailableError reports that neither the requested version's
// snapshot nor the default one could be loaded. It is a setup problem,
// distinct from a search that found nothing.
type DocsUnavailableError struct {
	Version string
	Err     error
}

func (e *DocsUnavailableError) Error() string {
	return fmt.Sprintf("documentation unavailable for version %s: %v", e.Version, e.Err)
}

func (e *DocsUnavailableError) Unwrap() error {
	return e.Err
}

func (e *DocsUnavailableError) Is(target error) bool {
	return target == ErrDocsUnavailable
}
