// Package domain models METAR station lookups: station codes, the decoded
// display fields of a report, and the error taxonomy shared by the fetcher,
// the lookup service and the HTTP layer.
//
// # Report Format
//
// A METAR is a single line of whitespace-separated groups, for example:
//
//	METAR KJFK 061751Z 18010KT 10SM FEW040 24/17 A3027 RMK AO2 SLP250
//
// Only five groups are decoded, each by an independent pattern over the
// whole line (first match wins):
//
//	Wind:        dddssKT, dddssGggKT or VRBssKT. Speeds are knots, 2-3 digits.
//	Visibility:  nSM / nnSM in statute miles; otherwise any bare 4-digit
//	             token is read as meters (9999 = 10 km or more).
//	Clouds:      FEW|SCT|BKN|OVC followed by 3 digits of hundreds of feet.
//	             SKC or CLR means clear sky.
//	Temperature: TT/DD in whole degrees Celsius; a leading M means minus.
//	Altimeter:   Annnn in hundredths of inches of mercury (A3027 = 30.27).
//
// Everything else in the report, including the remarks section, is left
// in the raw text. A group that does not match leaves its field nil.
//
// # Station Codes
//
// Codes are exactly four ASCII letters. Input is trimmed and uppercased
// before validation, and invalid codes are rejected with [ErrInvalidCode]
// before any provider is contacted.
package domain
