package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Report is a raw report line together with the provider that served it.
type Report struct {
	Station  StationCode `json:"icao"`
	Raw      string      `json:"raw"`
	Provider string      `json:"provider"`
}

// VisibilityUnit distinguishes statute-mile and meter visibility.
type VisibilityUnit string

const (
	StatuteMiles VisibilityUnit = "SM"
	Meters       VisibilityUnit = "m"
)

// Wind is the surface wind group, e.g. 18010KT or VRB03KT.
type Wind struct {
	Variable  bool `json:"variable"`
	Direction int  `json:"direction,omitempty"` // degrees true; zero when Variable
	Speed     int  `json:"speed"`               // knots
	Gust      *int `json:"gust,omitempty"`      // knots
}

func (w Wind) String() string {
	dir := "VRB"
	if !w.Variable {
		dir = fmt.Sprintf("%03d", w.Direction)
	}
	s := fmt.Sprintf("%s° @ %d kt", dir, w.Speed)
	if w.Gust != nil {
		s += fmt.Sprintf(" G%d", *w.Gust)
	}
	return s
}

// Visibility is prevailing visibility in statute miles or meters.
type Visibility struct {
	Value int            `json:"value"`
	Unit  VisibilityUnit `json:"unit"`
}

func (v Visibility) String() string {
	if v.Unit == Meters {
		return fmt.Sprintf("%04d m", v.Value)
	}
	return fmt.Sprintf("%d SM", v.Value)
}

// CloudLayer is the first reported cloud layer, or a clear sky.
type CloudLayer struct {
	Clear      bool   `json:"clear"`
	Coverage   string `json:"coverage,omitempty"`    // FEW, SCT, BKN, OVC
	AltitudeFt int    `json:"altitude_ft,omitempty"` // feet above ground
}

func (c CloudLayer) String() string {
	if c.Clear {
		return "SKC"
	}
	return fmt.Sprintf("%s %s ft", c.Coverage, thousands(c.AltitudeFt))
}

// TempDew is the temperature/dew point pair in whole degrees Celsius.
type TempDew struct {
	TemperatureC int `json:"temperature_c"`
	DewPointC    int `json:"dew_point_c"`
}

func (t TempDew) String() string {
	return fmt.Sprintf("%d °C / %d °C", t.TemperatureC, t.DewPointC)
}

// Altimeter is the altimeter setting in inches of mercury. Text keeps the
// two-decimal rendering of the source group so 29.90 stays "29.90".
type Altimeter struct {
	InHg float64 `json:"inhg"`
	Text string  `json:"text"`
}

func (a Altimeter) String() string {
	return a.Text + " inHg"
}

// DecodedFields holds the subset of a report extracted for display. A nil
// field means the group was not present in the report.
type DecodedFields struct {
	Wind       *Wind       `json:"wind,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
	Clouds     *CloudLayer `json:"clouds,omitempty"`
	TempDew    *TempDew    `json:"temp_dew,omitempty"`
	Altimeter  *Altimeter  `json:"altimeter,omitempty"`
}

// Placeholder is rendered for fields absent from the report.
const Placeholder = "—"

// Grid is the display form of DecodedFields, one string per tile.
type Grid struct {
	Wind       string `json:"wind"`
	Visibility string `json:"visibility"`
	Clouds     string `json:"clouds"`
	TempDew    string `json:"temp_dew"`
	Altimeter  string `json:"altimeter"`
}

// Grid renders every field, substituting Placeholder for absent ones.
func (d DecodedFields) Grid() Grid {
	return Grid{
		Wind:       render(d.Wind),
		Visibility: render(d.Visibility),
		Clouds:     render(d.Clouds),
		TempDew:    render(d.TempDew),
		Altimeter:  render(d.Altimeter),
	}
}

func render[T fmt.Stringer](v *T) string {
	if v == nil {
		return Placeholder
	}
	return (*v).String()
}

// thousands formats n with comma separators: 12000 -> "12,000".
func thousands(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + thousands(-n)
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
