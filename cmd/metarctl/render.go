package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/lookup"
	"github.com/fatih/color"
)

var (
	stationColor = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite)
	rawColor     = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
	errorColor   = color.New(color.FgRed)
)

func printResult(w io.Writer, res lookup.Result) {
	header := stationColor.Sprint(res.Code.String())
	if res.Provider != "" {
		header += dimColor.Sprintf("  via %s", res.Provider)
	}
	if !res.FetchedAt.IsZero() {
		header += dimColor.Sprintf("  %s", res.FetchedAt.Format(time.RFC3339))
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rawColor.Sprint(res.Report))
	fmt.Fprintln(w)

	if res.Grid == nil {
		return
	}
	for _, row := range gridRows(*res.Grid) {
		fmt.Fprintf(w, "  %s %s\n", labelColor.Sprintf("%-11s", row[0]), valueColor.Sprint(row[1]))
	}
}

func gridRows(g domain.Grid) [][2]string {
	return [][2]string{
		{"Wind", g.Wind},
		{"Visibility", g.Visibility},
		{"Clouds", g.Clouds},
		{"Temp/Dew", g.TempDew},
		{"Altimeter", g.Altimeter},
	}
}

func printFavorites(w io.Writer, favs []domain.StationCode) {
	if len(favs) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("no favorites"))
		return
	}
	codes := make([]string, len(favs))
	for i, f := range favs {
		codes[i] = f.String()
	}
	fmt.Fprintln(w, strings.Join(codes, " "))
}
