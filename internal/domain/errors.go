package domain

import "errors"

var (
	// ErrProductNotFound signals a missing catalog record.
	ErrProductNotFound = errors.New("product not found")
	// ErrSearchEngineUnavailable signals a lexical engine failure. This is
	// the only dependency whose failure is fatal to a search request.
	ErrSearchEngineUnavailable = errors.New("search engine unavailable")
	// ErrReasoningFailed signals a reasoning service failure or a response
	// that violates the expected JSON shape. Always recovered locally.
	ErrReasoningFailed = errors.New("reasoning failed")
	// ErrInvalidRequest signals a request that fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)
