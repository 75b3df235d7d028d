package navigation

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/farmsync/pkg/clients/farmsync"
)

var (
	// ErrUnauthenticated is returned when a page other than Login is entered
	// without a session.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrWorkerRequired is returned when WorkerDetails is entered without a
	// worker id.
	ErrWorkerRequired = errors.New("worker id required")
	// ErrUnknownPage is returned for pages the controller does not know.
	ErrUnknownPage = errors.New("unknown page")
	// ErrNotRetryable is returned by Retry when the current page has no
	// retryable failure.
	ErrNotRetryable = errors.New("nothing to retry")
	// ErrWrongPage is returned by worker actions outside a loaded
	// WorkerDetails page.
	ErrWrongPage = errors.New("worker details not loaded")
)

// ErrorKind classifies page failures.
type ErrorKind int

const (
	// KindValidation is bad user input, caught before any network call.
	KindValidation ErrorKind = iota + 1
	// KindRetryable is a network or backend failure.
	KindRetryable
	// KindNotFound is a terminal missing-entity view.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRetryable:
		return "retryable"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// PageError is a failure rendered as the page's error state.
type PageError struct {
	Kind ErrorKind
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

func validationError(err error) *PageError {
	return &PageError{Kind: KindValidation, Err: err}
}

// classify maps a backend error onto a page error kind. 4xx responses other
// than 404 mean the input was rejected.
func classify(err error) *PageError {
	var apiErr *farmsync.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.NotFound():
		return &PageError{Kind: KindNotFound, Err: err}
	case errors.As(err, &apiErr) && !apiErr.Retryable():
		return &PageError{Kind: KindValidation, Err: err}
	default:
		return &PageError{Kind: KindRetryable, Err: err}
	}
}

// KindOf returns the page error kind of err, or zero.
func KindOf(err error) ErrorKind {
	var pe *PageError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
