package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var stationCodeRegex = regexp.MustCompile(`^[A-Z]{4}$`)

// StationCode is a validated 4-letter ICAO station identifier.
type StationCode string

// ParseStationCode trims and uppercases s, then checks it against the
// 4-letter pattern. The returned error wraps ErrInvalidCode.
func ParseStationCode(s string) (StationCode, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if !stationCodeRegex.MatchString(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	return StationCode(code), nil
}

// Valid reports whether c is exactly four uppercase ASCII letters.
func (c StationCode) Valid() bool {
	return stationCodeRegex.MatchString(string(c))
}

func (c StationCode) String() string { return string(c) }
