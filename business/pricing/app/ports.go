// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/token"
)

// QuoteProvider is implemented by one venue adapter. GetQuote must honor
// ctx deadlines and classify failures with the quote-failure error codes so
// the sizing layer can tell a dead venue from a thin one.
type QuoteProvider interface {
	// Kind identifies which venue family this provider serves.
	Kind() domain.VenueKind

	// GetQuote asks the venue for the TokenOut amount that amountIn buys.
	// The venue tag carries the routing parameters for this provider's kind.
	GetQuote(ctx context.Context, pair domain.Pair, venue domain.Venue, amountIn token.Amount) (*domain.Quote, error)
}
