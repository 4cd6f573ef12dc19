package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/di"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/logger"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/currency"
)

var commands = []subcommands.Command{
	&totalsCmd{},
	&refreshCmd{},
	&snapshotCmd{},
	&historyCmd{},
	&expensesCmd{},
}

var out io.Writer = os.Stdout

// withContainer loads configuration, wires the engine and runs fn against it
func withContainer(ctx context.Context, fn func(*di.Container, *config.Config) error) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	level := "warn"
	if cfg.LogLevel == "debug" {
		level = cfg.LogLevel
	}
	log := logger.NewWithWriter(logger.Config{Level: level, Pretty: true}, os.Stderr)

	c, err := di.Wire(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer c.Close()

	if err := fn(c, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type totalsCmd struct{}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "print the portfolio totals in the base currency" }
func (*totalsCmd) Usage() string {
	return `wealthctl totals

  Prints liquidity, investments, crypto, liabilities and net worth.
  Holdings without an exchange rate are listed separately.
`
}
func (*totalsCmd) SetFlags(*flag.FlagSet) {}

func (*totalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withContainer(ctx, func(c *di.Container, cfg *config.Config) error {
		data := c.Store.Snapshot()
		printTotals(out, c.Aggregator.CalculateTotals(data), cfg.BaseCurrency)

		for _, h := range c.Aggregator.DegradedHoldings(data) {
			fmt.Fprintf(out, "warning: %s held in %s has no rate to %s\n", h.Symbol, h.Currency, cfg.BaseCurrency)
		}
		return nil
	})
}

func printTotals(w io.Writer, t domain.Totals, base string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Liquidity\t%s\t\n", currency.Format(t.TotalLiquidity, base))
	fmt.Fprintf(tw, "Investments\t%s\t\n", currency.Format(t.TotalInvestments, base))
	fmt.Fprintf(tw, "Crypto\t%s\t\n", currency.Format(t.TotalCrypto, base))
	fmt.Fprintf(tw, "Total assets\t%s\t\n", currency.Format(t.TotalAssets, base))
	fmt.Fprintf(tw, "Liabilities\t%s\t\n", currency.Format(t.TotalLiabilities, base))
	fmt.Fprintf(tw, "Net worth\t%s\t\n", currency.Format(t.NetWorth, base))
	_ = tw.Flush()
}

type refreshCmd struct {
	force bool
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch current prices for stale holdings" }
func (*refreshCmd) Usage() string {
	return `wealthctl refresh [-force]

  Fetches prices for every holding whose price is older than the
  staleness window. With -force every priced holding is refreshed.
`
}

func (p *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.force, "force", false, "Refresh every holding regardless of price age.")
}

func (p *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withContainer(ctx, func(c *di.Container, _ *config.Config) error {
		result, err := c.Coordinator.Refresh(ctx, p.force)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Updated %d of %d holdings\n", result.Updated, result.Attempted)
		if len(result.Missing) > 0 {
			fmt.Fprintf(out, "No price for %d holdings\n", len(result.Missing))
		}
		return nil
	})
}

type snapshotCmd struct{}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record today's net worth snapshot" }
func (*snapshotCmd) Usage() string {
	return `wealthctl snapshot

  Appends a snapshot of the current totals to the history.
`
}
func (*snapshotCmd) SetFlags(*flag.FlagSet) {}

func (*snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withContainer(ctx, func(c *di.Container, cfg *config.Config) error {
		snap, err := c.Snapshots.TakeSnapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Snapshot %s: net worth %s\n", snap.Date.Format("2006-01-02"), currency.Format(snap.NetWorth, cfg.BaseCurrency))
		return nil
	})
}

type historyCmd struct {
	timeRange string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the net worth history" }
func (*historyCmd) Usage() string {
	return `wealthctl history [-range <range>]

  Prints one line per snapshot within the range.
`
}

func (p *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.timeRange, "range", "1M", "History range (1M, 6M, 1Y, ALL).")
}

func (p *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := domain.ParseTimeRange(p.timeRange)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	return withContainer(ctx, func(c *di.Container, cfg *config.Config) error {
		points := c.Snapshots.GetSnapshotsByRange(c.Store.Snapshot(), r)
		if len(points) == 0 {
			fmt.Fprintln(out, "No snapshots in range")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, point := range points {
			fmt.Fprintf(tw, "%s\t%s\n", point.Date.Format("2006-01-02"), currency.Format(point.Value, cfg.BaseCurrency))
		}
		return tw.Flush()
	})
}

type expensesCmd struct {
	period string
}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "print spending by category" }
func (*expensesCmd) Usage() string {
	return `wealthctl expenses [-period <period>]

  Groups the expenses of the period by category, biggest first.
`
}

func (p *expensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.period, "period", "30d", "Period (30d, 3m, ytd, all).")
}

func (p *expensesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := domain.ParsePeriod(p.period)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	return withContainer(ctx, func(c *di.Container, cfg *config.Config) error {
		breakdown := c.Analytics.ExpensesByCategory(c.Store.Snapshot(), period)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, item := range breakdown.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s%%\n", item.Name, currency.Format(item.Value, cfg.BaseCurrency), item.Percentage.StringFixed(1))
		}
		fmt.Fprintf(tw, "Total\t%s\t\n", currency.Format(breakdown.Total, cfg.BaseCurrency))
		return tw.Flush()
	})
}
