// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/0xarbiter/arbscan/business/arbitrage/app"
	"github.com/0xarbiter/arbscan/business/arbitrage/domain"
)

const line = "================================================================================"
const thinLine = "--------------------------------------------------------------------------------"

// Ensure ConsoleReporter implements Reporter.
var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter renders detection results to a terminal.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a reporter writing to w; for tests.
func NewConsoleReporterTo(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "Arbitrage Scanner Started")
	fmt.Fprintln(r.out, "=========================")
	return nil
}

// Report renders one sized opportunity.
func (r *ConsoleReporter) Report(opp *domain.Opportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, line)
	fmt.Fprintf(r.out, "OPPORTUNITY %s [%s]\n", opp.ID[:8], opp.Classification)
	fmt.Fprintln(r.out, line)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Instrument:     %s\n", opp.Instrument.String())
	fmt.Fprintln(r.out, thinLine)
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  Buy  (%s): $%s\n", opp.Spread.BuyQuote.Venue, opp.Spread.BuyQuote.Price().StringFixed(4))
	fmt.Fprintf(r.out, "  Sell (%s): $%s\n", opp.Spread.SellQuote.Venue, opp.Spread.SellQuote.Price().StringFixed(4))
	fmt.Fprintf(r.out, "  Spread:         %s bps\n", opp.Spread.BasisPoints().StringFixed(2))
	fmt.Fprintln(r.out, thinLine)
	fmt.Fprintln(r.out, "TRADE")
	fmt.Fprintf(r.out, "  Size:           %s %s\n", opp.TradeSize.String(), opp.Instrument.Pair.TokenIn.Symbol)
	fmt.Fprintf(r.out, "  Notional:       $%s\n", opp.NotionalUSD.StringFixed(2))
	fmt.Fprintln(r.out, thinLine)
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Gross:          $%s\n", opp.GrossProfit.StringFixed(2))
	fmt.Fprintf(r.out, "  Flashloan fee:  $%s\n", opp.Costs.FlashloanFee.StringFixed(2))
	fmt.Fprintf(r.out, "  Gas:            $%s\n", opp.Costs.GasCost.StringFixed(2))
	fmt.Fprintf(r.out, "  Slippage:       $%s\n", opp.Costs.SlippageLoss.StringFixed(2))
	fmt.Fprintf(r.out, "  Net:            $%s\n", opp.NetProfit.StringFixed(2))
	fmt.Fprintln(r.out, line)
}

// ReportSession renders the end-of-tick summary as a single line.
func (r *ConsoleReporter) ReportSession(summary domain.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "[%s] scanned=%d skipped=%d opportunities=%d executable=%d duration=%s",
		summary.StartedAt.Format("15:04:05"),
		summary.InstrumentsScanned,
		summary.InstrumentsSkipped,
		summary.Opportunities,
		summary.Executable,
		summary.Duration.Round(time.Millisecond),
	)
	for venue, n := range summary.QuoteFailures {
		fmt.Fprintf(r.out, " fail[%s]=%d", venue, n)
	}
	fmt.Fprintln(r.out, "")
}

// Stop prints the shutdown notice.
func (r *ConsoleReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Scanner Stopped")
	return nil
}
