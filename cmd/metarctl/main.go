// Command metarctl looks up a station's current report from the terminal,
// sharing provider configuration with the service and keeping favorites and
// the last-used code in a local SQLite file.
//
// Usage:
//
//	metarctl [flags] [ICAO]
//	metarctl -a KSEA        # add a favorite
//	metarctl -f             # list favorites
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/adapter/sqlite"
	"github.com/couchcryptid/metar-card-service/internal/config"
	"github.com/couchcryptid/metar-card-service/internal/fetcher"
	"github.com/couchcryptid/metar-card-service/internal/lookup"
	"github.com/couchcryptid/metar-card-service/internal/observability"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"
)

type options struct {
	dbPath    string
	favorites bool
	add       string
	remove    string
	rawOnly   bool
	noColor   bool
	timeout   time.Duration
	code      string
}

func main() {
	opts := parseFlags()
	if opts.noColor {
		color.NoColor = true
	}
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint(err))
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dbPath, "db", defaultDBPath(), "SQLite file holding favorites and the last-used code")
	flag.BoolVarP(&o.favorites, "favorites", "f", false, "list favorites and exit")
	flag.StringVarP(&o.add, "add", "a", "", "add a station to favorites")
	flag.StringVarP(&o.remove, "remove", "r", "", "remove a station from favorites")
	flag.BoolVar(&o.rawOnly, "raw", false, "print only the raw report")
	flag.BoolVar(&o.noColor, "no-color", false, "disable color output")
	flag.DurationVar(&o.timeout, "timeout", 20*time.Second, "overall lookup timeout")
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	o.code = flag.Arg(0)
	return o
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".metarctl.db"
	}
	return filepath.Join(home, ".metarctl.db")
}

func run(o options, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	// Diagnostics go to stderr so stdout stays pipeable.
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   observability.ParseLevel(sharedcfg.EnvOrDefault("LOG_LEVEL", "warn")),
		NoColor: color.NoColor,
	}))

	store, err := sqlite.Open(ctx, o.dbPath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // read-mostly local file

	// A one-shot process is never scraped; keep it off the default registry.
	metrics := observability.NewMetricsForTesting()
	reports := fetcher.New(cfg, logger, metrics, clockwork.NewRealClock())
	svc := lookup.NewService(reports, store, lookup.Options{
		DefaultCode:  cfg.DefaultICAO,
		AutoFavorite: cfg.AutoFavorite,
	}, logger, metrics)

	switch {
	case o.add != "":
		favs, err := svc.AddFavorite(ctx, o.add)
		if err != nil {
			return err
		}
		printFavorites(out, favs)
		return nil
	case o.remove != "":
		favs, err := svc.RemoveFavorite(ctx, o.remove)
		if err != nil {
			return err
		}
		printFavorites(out, favs)
		return nil
	case o.favorites:
		favs, err := svc.Favorites(ctx)
		if err != nil {
			return err
		}
		printFavorites(out, favs)
		return nil
	}

	// Argument, else last-used code, else the service default.
	req := lookup.Request{Code: o.code}
	if last, ok, err := svc.LastCode(ctx); err == nil && ok {
		req.Displayed = last.String()
	}

	res := svc.Lookup(ctx, req)
	if res.State == lookup.StateError {
		if res.Code != "" {
			return fmt.Errorf("%s: %s", res.Code, res.Message)
		}
		return fmt.Errorf("%s", res.Message)
	}

	if o.rawOnly {
		fmt.Fprintln(out, res.Report)
		return nil
	}
	printResult(out, res)
	return nil
}
