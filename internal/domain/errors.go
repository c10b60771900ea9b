package domain

import "errors"

var (
	// ErrNotFound signals that storage holds no document for the id.
	ErrNotFound = errors.New("not found")
	// ErrMalformedQuery signals that the search store rejected the query itself.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrServiceUnavailable signals a backend outage that outlived the retry budget.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrAuthenticationRequired signals a missing or unrecognized credential.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden signals a recognized but insufficient credential.
	ErrForbidden = errors.New("forbidden")
)
