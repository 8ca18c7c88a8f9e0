// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"

	"github.com/0xarbiter/arbscan/business/arbitrage/domain"
)

// Reporter renders detection results for an operator.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report renders one sized opportunity.
	Report(opp *domain.Opportunity)

	// ReportSession renders the end-of-tick summary.
	ReportSession(summary domain.Summary)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// OpportunityConsumer receives executable opportunities for downstream use.
// Consumers must not block; slow consumers drop the scan cadence.
type OpportunityConsumer interface {
	Consume(ctx context.Context, opp *domain.Opportunity)
}

// ConsumerFunc adapts a function to the OpportunityConsumer interface.
type ConsumerFunc func(ctx context.Context, opp *domain.Opportunity)

// Consume implements OpportunityConsumer.
func (f ConsumerFunc) Consume(ctx context.Context, opp *domain.Opportunity) {
	f(ctx, opp)
}
