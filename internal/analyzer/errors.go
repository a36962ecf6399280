package analyzer

import (
	"fmt"
	"net/http"
)

// FetchError reports a page that could not be fetched or answered with status >= 400.
// StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError wraps any database failure raised while running Op.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError rejects a submitted address before anything is persisted.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}
