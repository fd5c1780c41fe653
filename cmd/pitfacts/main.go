package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/bobmcallan/pitfacts/internal/common"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pitfacts: %v\n", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	app := cli.NewApp()
	app.Name = "pitfacts"
	app.Usage = "Point-in-time SEC XBRL fact normalizer"
	app.Version = common.GetFullVersion()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to pitfacts.toml",
			EnvVar: "PITFACTS_CONFIG",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Fetch, catalog, normalize and store facts for a ticker universe",
			ArgsUsage: "[TICKER...]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "tickers, t",
					Usage: "comma-separated tickers, overrides the configured universe",
				},
			},
			Action: runCommand,
		},
		{
			Name:      "catalog",
			Usage:     "Rebuild field catalog, classifications and priorities without storing facts",
			ArgsUsage: "[TICKER...]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "tickers, t",
					Usage: "comma-separated tickers, overrides the configured universe",
				},
				cli.IntFlag{
					Name:  "top",
					Value: 20,
					Usage: "number of priorities to print",
				},
				cli.BoolFlag{
					Name:  "reclassify",
					Usage: "ignore stored classifications and classify every field again",
				},
			},
			Action: catalogCommand,
		},
		{
			Name:  "fields",
			Usage: "Print field priorities stored by the last run or catalog",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "top",
					Value: 20,
					Usage: "number of priorities to print, 0 for all",
				},
			},
			Action: fieldsCommand,
		},
		{
			Name:      "company",
			Usage:     "Show the stored profile, fiscal year, fact count and filings for a ticker",
			ArgsUsage: "TICKER",
			Action:    companyCommand,
		},
		{
			Name:      "asof",
			Usage:     "Show what was known about a ticker on a date",
			ArgsUsage: "TICKER YYYY-MM-DD [FIELD]",
			Action:    asOfCommand,
		},
		{
			Name:      "export",
			Usage:     "Write stored facts and TTM records as CSV",
			ArgsUsage: "TICKER",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "field, f",
					Usage: "export a single field",
				},
			},
			Action: exportCommand,
		},
		{
			Name:      "chart",
			Usage:     "Render stored TTM series as a PNG",
			ArgsUsage: "TICKER",
			Action:    chartCommand,
		},
		{
			Name:  "version",
			Usage: "Print version information",
			Action: func(c *cli.Context) error {
				fmt.Fprintln(c.App.Writer, common.GetFullVersion())
				return nil
			},
		},
	}
	return app
}
