package domain

import "context"

// Provider is one upstream source of raw reports, tried in turn by the
// fetcher. Implementations return ErrNotFound when the upstream answered
// without data for the station; any other error means the call failed.
type Provider interface {
	Name() string
	FetchReport(ctx context.Context, code StationCode) (string, error)
}
