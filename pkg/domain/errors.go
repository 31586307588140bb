package domain

import "errors"

// ErrValidation is returned when caller input is rejected before any network call.
var ErrValidation = errors.New("invalid input")

// ErrNotFound is returned when the remote store has no matching revision.
var ErrNotFound = errors.New("no matching content")

// ErrConflict is returned when the remote store detects a concurrent modification.
var ErrConflict = errors.New("edit conflict")

// ErrTransport is returned on any network or protocol failure.
var ErrTransport = errors.New("transport failure")

// ErrCommit is returned for write failures not otherwise classified.
var ErrCommit = errors.New("commit failed")

// ErrInvalidFormat is returned when imported data has an unrecognized top-level shape.
var ErrInvalidFormat = errors.New("invalid import format")

// ErrEmptyImport is returned when an import yields no annotations.
var ErrEmptyImport = errors.New("empty import")

// ErrPageNotFound is returned when a page has no stored annotations.
var ErrPageNotFound = errors.New("page not found")
