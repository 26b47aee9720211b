package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// trip does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails a ledger
// rule (e.g. missing plate or trip date, unknown status).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
