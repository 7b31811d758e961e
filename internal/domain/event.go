package domain

import "time"

// LookupEvent records one successful station lookup. It is published to the
// configured event sinks after the result has been returned.
type LookupEvent struct {
	Station   StationCode   `json:"icao"`
	Report    string        `json:"report"`
	Decoded   DecodedFields `json:"decoded"`
	Provider  string        `json:"provider,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
}
