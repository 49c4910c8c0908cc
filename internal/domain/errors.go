package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable marks a failed call to an external provider
	// (network error, timeout, refused connection).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedUpstream marks a provider response that could not be decoded.
	ErrMalformedUpstream = errors.New("malformed upstream response")

	// ErrInvalidInput marks a caller-supplied value that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup of an unknown vessel or resource.
	ErrNotFound = errors.New("not found")
)

// ConfigurationError reports a registry or option problem found before
// generation starts. It is a programming or configuration mistake and is
// never retried.
type ConfigurationError struct {
	Kind   string // "port", "route", "category", "option"
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s %q: %s", e.Kind, e.Name, e.Reason)
}

func configErr(kind, name, reason string) error {
	return &ConfigurationError{Kind: kind, Name: name, Reason: reason}
}
