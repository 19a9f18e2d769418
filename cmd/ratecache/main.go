package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/damon-houk/currency-rate-cache/internal/application/service"
	"github.com/damon-houk/currency-rate-cache/internal/config"
	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/api"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

const usage = `usage: ratecache [-env FILE] <command> [args]

commands:
  rates                     show the usable exchange rates
  currencies                list the available currency codes
  convert AMOUNT FROM TO    convert AMOUNT between two currencies (codes or names like "dollar")
  refresh                   fetch the latest rates regardless of freshness
  serve                     run the HTTP API
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errNoRates = errors.New("no rates available")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
	cfg    config.Config
	log    logger.Logger
	rates  *service.RateCache
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("ratecache", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := flags.String("env", ".env", "path to a .env file")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitError
	}

	if err := entity.CheckAliases(); err != nil {
		fmt.Fprintf(stderr, "currency table error: %v\n", err)
		return exitError
	}

	jsonLogger := logger.NewJSONLogger(stderr, cfg.LogLevel)
	defer func() { _ = jsonLogger.Sync() }()
	logger.SetDefaultLogger(jsonLogger)

	a, closeApp, err := newApp(cfg, jsonLogger, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "storage error: %v\n", err)
		return exitError
	}
	defer func() {
		if err := closeApp(); err != nil {
			jsonLogger.Error("Failed to close rate store", map[string]interface{}{"error": err.Error()})
		}
	}()

	command, rest := flags.Arg(0), flags.Args()[1:]
	switch command {
	case "rates":
		err = a.showRates(ctx)
	case "currencies":
		err = a.listCurrencies(ctx)
	case "convert":
		if len(rest) != 3 {
			fmt.Fprint(stderr, usage)
			return exitUsage
		}
		err = a.convert(ctx, rest[0], rest[1], rest[2])
	case "refresh":
		err = a.refresh(ctx)
	case "serve":
		err = a.serve(ctx)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return exitUsage
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	return exitOK
}

// newApp wires the rate store, the rate source and the rate cache
func newApp(cfg config.Config, log logger.Logger, stdout io.Writer) (*app, func() error, error) {
	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	source := api.NewFrankfurterAPIClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)

	return &app{
		cfg:    cfg,
		log:    log,
		rates:  service.NewRateCache(store, source, log),
		stdout: stdout,
	}, closeStore, nil
}

func (a *app) showRates(ctx context.Context) error {
	snapshot := a.rates.GetUsableRates(ctx)
	if snapshot == nil {
		return errNoRates
	}

	fmt.Fprintf(a.stdout, "Rates from %s (base %s)\n", snapshot.Date, entity.BaseCurrency)
	for _, code := range snapshot.Currencies() {
		rate, _ := snapshot.Rate(code)
		fmt.Fprintf(a.stdout, "  %s  %s\n", code, decimal.NewFromFloat(rate).StringFixed(4))
	}
	return nil
}

func (a *app) listCurrencies(ctx context.Context) error {
	snapshot := a.rates.GetUsableRates(ctx)
	if snapshot == nil {
		return errNoRates
	}

	fmt.Fprintln(a.stdout, strings.Join(snapshot.Currencies(), ", "))
	return nil
}

func (a *app) convert(ctx context.Context, amountInput, from, to string) error {
	amount, err := service.ParseAmount(amountInput)
	if err != nil {
		return err
	}

	snapshot := a.rates.GetUsableRates(ctx)
	if snapshot == nil {
		return errNoRates
	}

	conversion, err := service.Convert(amount, from, to, snapshot)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s %s = %s %s\n",
		service.FormatAmount(conversion.Amount), conversion.From,
		service.FormatAmount(conversion.Result), conversion.To)
	return nil
}

func (a *app) refresh(ctx context.Context) error {
	snapshot, err := a.rates.ForceRefresh(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Rates updated: %s (%d currencies)\n", snapshot.Date, len(snapshot.Rates))
	return nil
}
