package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/0xarbiter/arbscan/business/arbitrage/domain"
	pricingDomain "github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/logger"
)

// ScannerConfig tunes the scan loop.
type ScannerConfig struct {
	Instruments        []pricingDomain.Instrument
	ScanInterval       time.Duration
	MaxConcurrentPairs int64
}

type scannerMetrics struct {
	ticksTotal     metric.Int64Counter
	scansTotal     metric.Int64Counter
	skipsTotal     metric.Int64Counter
	opportunities  metric.Int64Counter
	scanDurationMs metric.Float64Histogram
}

// Scanner drives periodic detection over all configured instruments. One
// instrument is never scanned concurrently with itself: an instrument still
// in flight when the next tick fires is skipped, not queued.
type Scanner struct {
	optimizer *SizeOptimizer
	reporter  Reporter
	consumers []OpportunityConsumer
	history   *domain.History
	cfg       ScannerConfig
	log       logger.LoggerInterface

	sem      *semaphore.Weighted
	mu       sync.Mutex
	inflight map[string]bool

	metrics *scannerMetrics
}

// NewScanner wires the scan loop.
func NewScanner(
	optimizer *SizeOptimizer,
	reporter Reporter,
	consumers []OpportunityConsumer,
	history *domain.History,
	cfg ScannerConfig,
	log logger.LoggerInterface,
) (*Scanner, error) {
	s := &Scanner{
		optimizer: optimizer,
		reporter:  reporter,
		consumers: consumers,
		history:   history,
		cfg:       cfg,
		log:       log,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrentPairs),
		inflight:  make(map[string]bool, len(cfg.Instruments)),
	}
	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scanner) initMetrics() error {
	meter := otel.Meter("scanner")
	var err error

	s.metrics = &scannerMetrics{}

	s.metrics.ticksTotal, err = meter.Int64Counter(
		"scan_ticks_total",
		metric.WithDescription("Total scan ticks"),
	)
	if err != nil {
		return err
	}

	s.metrics.scansTotal, err = meter.Int64Counter(
		"instrument_scans_total",
		metric.WithDescription("Total instrument scans"),
	)
	if err != nil {
		return err
	}

	s.metrics.skipsTotal, err = meter.Int64Counter(
		"instrument_skips_total",
		metric.WithDescription("Instrument scans skipped because the previous one was still running"),
	)
	if err != nil {
		return err
	}

	s.metrics.opportunities, err = meter.Int64Counter(
		"opportunities_total",
		metric.WithDescription("Sized opportunities by classification"),
	)
	if err != nil {
		return err
	}

	s.metrics.scanDurationMs, err = meter.Float64Histogram(
		"instrument_scan_duration_ms",
		metric.WithDescription("Per-instrument scan duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Run blocks scanning until ctx is cancelled. The first tick fires
// immediately.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.reporter.Start(ctx); err != nil {
		return err
	}
	defer s.reporter.Stop()

	s.log.Info(ctx, "scanner started",
		"instruments", len(s.cfg.Instruments),
		"interval", s.cfg.ScanInterval.String(),
		"max_concurrent", s.cfg.MaxConcurrentPairs,
	)

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "scanner stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick scans every instrument once, bounded by the semaphore, and reports
// the session summary when all scans finish.
func (s *Scanner) tick(ctx context.Context) {
	s.metrics.ticksTotal.Add(ctx, 1)
	session := domain.NewScanSession()

	var wg sync.WaitGroup
	for _, inst := range s.cfg.Instruments {
		if !s.tryAcquire(inst) {
			session.RecordSkipped()
			s.metrics.skipsTotal.Add(ctx, 1)
			s.log.Debug(ctx, "instrument still in flight, skipping",
				"instrument", inst.String(),
			)
			continue
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.release(inst)
			return
		}

		wg.Add(1)
		go func(inst pricingDomain.Instrument) {
			defer wg.Done()
			defer s.sem.Release(1)
			defer s.release(inst)
			s.scanInstrument(ctx, inst, session)
		}(inst)
	}
	// The tick returns without waiting so the cadence holds even when one
	// instrument is slow; the summary goes out when its scans finish.
	go func() {
		wg.Wait()
		if ctx.Err() == nil {
			s.reporter.ReportSession(session.Summarize())
		}
	}()
}

// scanInstrument runs one size search and fans results out. A failure here
// affects only this instrument.
func (s *Scanner) scanInstrument(ctx context.Context, inst pricingDomain.Instrument, session *domain.ScanSession) {
	start := time.Now()
	s.metrics.scansTotal.Add(ctx, 1)

	result, err := s.optimizer.FindOptimalSize(ctx, inst, session)

	s.metrics.scanDurationMs.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Error(ctx, "instrument scan failed",
			"instrument", inst.String(),
			"error", err,
		)
		return
	}
	session.RecordScanned()

	if result.Best == nil {
		s.log.Debug(ctx, "no profitable size",
			"instrument", inst.String(),
			"probed", result.ProbedSizes,
			"failed", result.FailedSizes,
			"thin", result.ThinSizes,
		)
		return
	}

	opp := result.Best
	session.RecordOpportunity(opp.IsExecutable())
	s.metrics.opportunities.Add(ctx, 1, metric.WithAttributes(
		attribute.String("classification", string(opp.Classification)),
	))
	s.history.Add(opp)
	s.reporter.Report(opp)

	if opp.Classification == domain.ClassImplausible {
		s.log.Warn(ctx, "implausible profit discarded",
			"instrument", inst.String(),
			"net_profit_usd", opp.NetProfit.String(),
			"notional_usd", opp.NotionalUSD.String(),
		)
		return
	}

	if opp.IsExecutable() {
		for _, c := range s.consumers {
			c.Consume(ctx, opp)
		}
	}
}

// tryAcquire marks an instrument in flight; false when it already is.
func (s *Scanner) tryAcquire(inst pricingDomain.Instrument) bool {
	key := inst.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Scanner) release(inst pricingDomain.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, inst.String())
}
