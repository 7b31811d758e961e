package domain

import (
	"regexp"
	"strconv"

	"k8s.io/utils/ptr"
)

// Each group is matched independently against the whole report; the first
// match wins and no pattern depends on another's result.
var (
	windRegex      = regexp.MustCompile(`\b(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?KT\b`)
	visMilesRegex  = regexp.MustCompile(`\b(\d{1,2})SM\b`)
	visMetersRegex = regexp.MustCompile(`\b(\d{4})\b`)
	cloudRegex     = regexp.MustCompile(`\b(FEW|SCT|BKN|OVC)(\d{3})\b`)
	clearSkyRegex  = regexp.MustCompile(`\b(SKC|CLR)\b`)
	tempDewRegex   = regexp.MustCompile(`\b(M?\d{2})/(M?\d{2})\b`)
	altimeterRegex = regexp.MustCompile(`\bA(\d{4})\b`)
)

// Decode extracts wind, visibility, clouds, temperature/dew point and
// altimeter setting from a raw report. It never fails: a group that is
// missing or malformed leaves its field nil.
func Decode(report string) DecodedFields {
	return DecodedFields{
		Wind:       decodeWind(report),
		Visibility: decodeVisibility(report),
		Clouds:     decodeClouds(report),
		TempDew:    decodeTempDew(report),
		Altimeter:  decodeAltimeter(report),
	}
}

func decodeWind(report string) *Wind {
	m := windRegex.FindStringSubmatch(report)
	if m == nil {
		return nil
	}
	w := &Wind{Speed: atoi(m[2])}
	if m[1] == "VRB" {
		w.Variable = true
	} else {
		w.Direction = atoi(m[1])
	}
	if m[3] != "" {
		w.Gust = ptr.To(atoi(m[3]))
	}
	return w
}

// decodeVisibility prefers statute miles. The meter fallback accepts any
// bare 4-digit token, so it can misfire on unrelated numbers.
func decodeVisibility(report string) *Visibility {
	if m := visMilesRegex.FindStringSubmatch(report); m != nil {
		return &Visibility{Value: atoi(m[1]), Unit: StatuteMiles}
	}
	if m := visMetersRegex.FindStringSubmatch(report); m != nil {
		return &Visibility{Value: atoi(m[1]), Unit: Meters}
	}
	return nil
}

func decodeClouds(report string) *CloudLayer {
	if m := cloudRegex.FindStringSubmatch(report); m != nil {
		return &CloudLayer{Coverage: m[1], AltitudeFt: atoi(m[2]) * 100}
	}
	if clearSkyRegex.MatchString(report) {
		return &CloudLayer{Clear: true}
	}
	return nil
}

func decodeTempDew(report string) *TempDew {
	m := tempDewRegex.FindStringSubmatch(report)
	if m == nil {
		return nil
	}
	return &TempDew{TemperatureC: parseSigned(m[1]), DewPointC: parseSigned(m[2])}
}

func decodeAltimeter(report string) *Altimeter {
	m := altimeterRegex.FindStringSubmatch(report)
	if m == nil {
		return nil
	}
	text := m[1][:2] + "." + m[1][2:]
	inHg, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &Altimeter{InHg: inHg, Text: text}
}

// parseSigned reads a temperature group where a leading M means minus.
func parseSigned(s string) int {
	if len(s) > 0 && s[0] == 'M' {
		return -atoi(s[1:])
	}
	return atoi(s)
}

// atoi is only called on regex-captured digit runs.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
