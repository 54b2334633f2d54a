package domain

import "errors"

// Auth errors: surfaced as denial, never as an unhandled failure.
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("credential expired")
var ErrTokenMalformed = errors.New("credential malformed")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrForbidden = errors.New("access forbidden")

// Data errors: a referenced product is missing from the catalog snapshot.
// Non-fatal; the offending entry is skipped.
var ErrProductNotFound = errors.New("product not found")

// Network errors: any collaborator timeout, connection failure, or non-2xx.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// Local store errors.
var ErrKeyNotFound = errors.New("key not found")
