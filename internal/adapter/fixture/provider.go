// Package fixture serves a fixed set of reports without network access,
// for local development and demos.
package fixture

import (
	"context"
	"fmt"

	"github.com/couchcryptid/metar-card-service/internal/domain"
)

// Reports is the built-in station table.
var Reports = map[domain.StationCode]string{
	"KJFK": "METAR KJFK 061751Z 18010KT 10SM FEW040 24/17 A3027 RMK AO2 SLP250 T02390172 10239 20178 58014",
	"KLAX": "METAR KLAX 061753Z 18003KT 8SM FEW009 BKN019 20/15 A2985 RMK AO2 SLP107 T02000150 10200 20161 50006 $",
	"KBOS": "METAR KBOS 061754Z 24011KT 10SM FEW250 28/12 A3020 RMK AO2 SLP227 T02830122 10283 20172 58020",
	"KDEN": "METAR KDEN 061753Z 08007KT 10SM FEW016 OVC021 08/04 A3022 RMK AO2 SLP210 T00830044 10083 20056 50004",
	"KSEA": "METAR KSEA 061753Z 01006KT 10SM FEW200 14/08 A3021 RMK AO2 SLP235 T01440078 10150 20078 50004 $",
}

// Provider implements domain.Provider over a static map.
type Provider struct {
	reports map[domain.StationCode]string
}

// New returns a Provider over reports, or over Reports when nil.
func New(reports map[domain.StationCode]string) *Provider {
	if reports == nil {
		reports = Reports
	}
	return &Provider{reports: reports}
}

func (p *Provider) Name() string { return "fixture" }

func (p *Provider) FetchReport(ctx context.Context, code domain.StationCode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, ok := p.reports[code]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, code)
	}
	return r, nil
}
