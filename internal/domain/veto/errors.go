package veto

import "errors"

// Sentinel kinds for veto errors.
var (
	ErrUnknownPolicy = errors.New("unknown veto policy")
)
