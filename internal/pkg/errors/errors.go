package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamUnavailable marks a failed call to an external collaborator
	// (place search, LLM). Always recoverable via fallback.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedLLMResponse marks an LLM reply that could not be parsed
	// into the expected suggestion schema.
	ErrMalformedLLMResponse = errors.New("malformed llm response")
)
