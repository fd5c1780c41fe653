package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/bobmcallan/pitfacts/internal/app"
	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/ttm"
)

// openApp initializes the app from the global --config flag.
func openApp(c *cli.Context) (*app.App, error) {
	a, err := app.NewApp(c.GlobalString("config"))
	if err != nil {
		return nil, cli.NewExitError(fmt.Sprintf("failed to initialize app: %v", err), 1)
	}
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM so in-flight companies stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveTickers prefers positional args, then --tickers, then the configured universe.
func resolveTickers(c *cli.Context, configured []string) []string {
	var tickers []string
	tickers = append(tickers, c.Args()...)
	if len(tickers) == 0 && c.String("tickers") != "" {
		tickers = strings.Split(c.String("tickers"), ",")
	}
	if len(tickers) == 0 {
		tickers = configured
	}
	return common.NormalizeTickers(tickers)
}

func runCommand(c *cli.Context) error {
	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := resolveTickers(c, a.Config.Tickers)
	if len(tickers) == 0 {
		return cli.NewExitError("no tickers given and none configured", 2)
	}

	common.PrintBanner(a.Config, a.Logger)
	ctx, cancel := signalContext()
	defer cancel()

	summary, err := a.Pipeline.Run(ctx, tickers)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("run failed: %v", err), 1)
	}
	common.PrintShutdownBanner(a.Logger)

	return writeJSON(c.App.Writer, summary)
}

func catalogCommand(c *cli.Context) error {
	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := resolveTickers(c, a.Config.Tickers)
	if len(tickers) == 0 {
		return cli.NewExitError("no tickers given and none configured", 2)
	}

	if c.Bool("reclassify") {
		a.Pipeline.Reclassify()
	}

	ctx, cancel := signalContext()
	defer cancel()

	analysis, err := a.Pipeline.AnalyzeFields(ctx, tickers)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("catalog failed: %v", err), 1)
	}
	printAnalysis(c.App.Writer, analysis, c.Int("top"))
	return nil
}

func fieldsCommand(c *cli.Context) error {
	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	priorities, err := a.Pipeline.StoredPriorities(context.Background(), c.Int("top"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if len(priorities) == 0 {
		return cli.NewExitError("no stored field priorities, run catalog first", 1)
	}
	fmt.Fprintf(c.App.Writer, "Top %d priorities:\n", len(priorities))
	printPriorities(c.App.Writer, priorities)
	return nil
}

func companyCommand(c *cli.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(c.Args().First()))
	if ticker == "" {
		return cli.NewExitError("usage: pitfacts company TICKER", 2)
	}

	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.Pipeline.CompanyStatus(context.Background(), ticker)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return writeJSON(c.App.Writer, status)
}

// asOfView is everything known about a ticker on one date.
type asOfView struct {
	Ticker string                 `json:"ticker"`
	AsOf   string                 `json:"as_of"`
	Filing *models.FilingEvent    `json:"latest_filing,omitempty"`
	Fact   *models.NormalizedFact `json:"fact,omitempty"`
	TTM    []models.TTMRecord     `json:"ttm,omitempty"`
}

func asOfCommand(c *cli.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return cli.NewExitError("usage: pitfacts asof TICKER YYYY-MM-DD [FIELD]", 2)
	}
	ticker := strings.ToUpper(strings.TrimSpace(args.Get(0)))
	asOf, err := models.ParseDate(args.Get(1))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid date %q: %v", args.Get(1), err), 2)
	}
	field := args.Get(2)

	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := lookupAsOf(context.Background(), a, ticker, field, asOf)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return writeJSON(c.App.Writer, view)
}

// lookupAsOf collects the latest filing, the optional field value and each TTM metric
// known on asOf. Missing pieces are left empty.
func lookupAsOf(ctx context.Context, a *app.App, ticker, field string, asOf time.Time) (*asOfView, error) {
	view := &asOfView{Ticker: ticker, AsOf: models.FormatDate(asOf)}

	event, err := a.Storage.EventStore().GetEventAsOf(ctx, ticker, asOf)
	switch {
	case err == nil:
		view.Filing = event
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to look up filing: %w", err)
	}

	if field != "" {
		fact, err := a.Storage.FactStore().GetFactAsOf(ctx, ticker, field, asOf)
		switch {
		case err == nil:
			view.Fact = fact
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("failed to look up %s: %w", field, err)
		}
	}

	for _, concept := range ttm.Concepts {
		rec, err := a.Storage.TTMStore().GetTTMAsOf(ctx, ticker, concept.MetricName(), asOf)
		switch {
		case err == nil:
			view.TTM = append(view.TTM, *rec)
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("failed to look up %s: %w", concept.MetricName(), err)
		}
	}

	return view, nil
}

func exportCommand(c *cli.Context) error {
	ticker := c.Args().First()
	if ticker == "" {
		return cli.NewExitError("usage: pitfacts export TICKER [--field FIELD]", 2)
	}

	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	path, err := a.Report.ExportFacts(ctx, ticker, c.String("field"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, path)

	path, err = a.Report.ExportTTM(ctx, ticker)
	switch {
	case err == nil:
		fmt.Fprintln(c.App.Writer, path)
	case errors.Is(err, models.ErrNotFound):
		a.Logger.Warn().Str("ticker", ticker).Msg("No TTM records to export")
	default:
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func chartCommand(c *cli.Context) error {
	ticker := c.Args().First()
	if ticker == "" {
		return cli.NewExitError("usage: pitfacts chart TICKER", 2)
	}

	a, err := openApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.Report.ChartTTM(context.Background(), ticker)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(w io.Writer, analysis *models.FieldAnalysis, top int) {
	fmt.Fprintf(w, "Companies: %d  Fields: %d  Deprecated: %d  Sector-specific: %d\n\n",
		analysis.Companies, len(analysis.Catalog), len(analysis.Deprecated), analysis.Availability.SectorSpecificFields)

	fmt.Fprintln(w, "Tiers:")
	for _, tier := range models.Tiers {
		fmt.Fprintf(w, "  %-12s %d\n", tier, analysis.Availability.TierCounts[tier])
	}

	top = max(0, min(top, len(analysis.Priorities)))
	fmt.Fprintf(w, "\nTop %d priorities:\n", top)
	printPriorities(w, analysis.Priorities[:top])

	if len(analysis.Consolidation) > 0 {
		fmt.Fprintln(w, "\nConsolidation:")
		for _, r := range analysis.Consolidation {
			fmt.Fprintf(w, "  %-18s %s (alternatives: %s)\n", r.Concept, r.PrimaryField, strings.Join(r.Alternatives, ", "))
		}
	}

	if len(analysis.TaxonomyMappings) > 0 {
		fmt.Fprintln(w, "\nGAAP/IFRS mappings:")
		for _, m := range analysis.TaxonomyMappings {
			fmt.Fprintf(w, "  %-40s -> %-40s %s\n", m.USGAAPField, m.IFRSField, m.Confidence)
		}
	}
}

func printPriorities(w io.Writer, priorities []models.FieldPriority) {
	for _, p := range priorities {
		flags := ""
		if p.IsCritical {
			flags += " critical"
		}
		if p.IsDeprecated {
			flags += " deprecated"
		}
		fmt.Fprintf(w, "  %7.1f  %-60s %-10s %5.1f%%%s\n", p.PriorityScore, p.FieldName, p.Taxonomy, p.AvailabilityPct, flags)
	}
}
