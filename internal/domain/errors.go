package domain

import "errors"

var (
	// ErrInvalidCode means the station code is not 4 letters. It is raised
	// before any network activity.
	ErrInvalidCode = errors.New("invalid station code")

	// ErrNotFound means a provider answered but had no report for the station.
	ErrNotFound = errors.New("station not found")

	// ErrUpstream means no provider produced a usable report.
	ErrUpstream = errors.New("upstream unavailable")
)
