package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("verdict not found")
	ErrInvalidEventID = errors.New("invalid event id")
	ErrInvalidLimit   = errors.New("invalid veto limit")
)
