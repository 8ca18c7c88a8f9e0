package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/apperror"
	"github.com/0xarbiter/arbscan/internal/logger"
	"github.com/0xarbiter/arbscan/internal/token"
)

// QuotePair holds the two venue quotes for one instrument at one size.
type QuotePair struct {
	A *domain.Quote
	B *domain.Quote
}

// QuoteError attributes a quote failure to the venue that produced it.
type QuoteError struct {
	Venue domain.Venue
	Err   error
}

// Error implements the error interface.
func (e *QuoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Venue, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *QuoteError) Unwrap() error {
	return e.Err
}

// QuoteService fans one quote request out to both venues of an instrument.
type QuoteService struct {
	providers    map[domain.VenueKind]QuoteProvider
	quoteTimeout time.Duration
	log          logger.LoggerInterface
}

// NewQuoteService registers the given providers by kind. quoteTimeout bounds
// each individual venue call.
func NewQuoteService(providers []QuoteProvider, quoteTimeout time.Duration, log logger.LoggerInterface) (*QuoteService, error) {
	byKind := make(map[domain.VenueKind]QuoteProvider, len(providers))
	for _, p := range providers {
		if _, dup := byKind[p.Kind()]; dup {
			return nil, fmt.Errorf("pricing: duplicate provider for venue %s", p.Kind())
		}
		byKind[p.Kind()] = p
	}
	return &QuoteService{
		providers:    byKind,
		quoteTimeout: quoteTimeout,
		log:          log,
	}, nil
}

// Provider returns the registered provider for a venue kind.
func (s *QuoteService) Provider(kind domain.VenueKind) (QuoteProvider, error) {
	p, ok := s.providers[kind]
	if !ok {
		return nil, fmt.Errorf("pricing: no provider registered for venue %s", kind)
	}
	return p, nil
}

// FetchBoth quotes amountIn on both venues of the instrument concurrently.
// A failure on either side fails the whole fetch; the error keeps the
// failing venue's classification so callers can count it per venue.
func (s *QuoteService) FetchBoth(ctx context.Context, inst domain.Instrument, amountIn token.Amount) (*QuotePair, error) {
	provA, err := s.Provider(inst.VenueA.Kind)
	if err != nil {
		return nil, err
	}
	provB, err := s.Provider(inst.VenueB.Kind)
	if err != nil {
		return nil, err
	}

	var pair QuotePair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.fetchOne(gctx, provA, inst.Pair, inst.VenueA, amountIn)
		if err != nil {
			return &QuoteError{Venue: inst.VenueA, Err: err}
		}
		pair.A = q
		return nil
	})
	g.Go(func() error {
		q, err := s.fetchOne(gctx, provB, inst.Pair, inst.VenueB, amountIn)
		if err != nil {
			return &QuoteError{Venue: inst.VenueB, Err: err}
		}
		pair.B = q
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (s *QuoteService) fetchOne(ctx context.Context, prov QuoteProvider, pair domain.Pair, venue domain.Venue, amountIn token.Amount) (*domain.Quote, error) {
	qctx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	quote, err := prov.GetQuote(qctx, pair, venue, amountIn)
	if err != nil {
		if qctx.Err() == context.DeadlineExceeded && !apperror.IsQuoteFailure(err) {
			err = apperror.Wrap(err, apperror.CodeQuoteTimeout,
				fmt.Sprintf("%s %s", venue, pair))
		}
		s.log.Debug(ctx, "quote failed",
			"venue", venue.String(),
			"pair", pair.String(),
			"amount_in", amountIn.String(),
			"error", err,
		)
		return nil, err
	}
	if !quote.AmountOut.ToDecimal().IsPositive() {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext(fmt.Sprintf("%s %s", venue, pair)))
	}
	return quote, nil
}
