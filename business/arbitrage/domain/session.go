package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScanSession accumulates what happened during one scan tick across all
// instruments. It is shared between concurrent per-instrument goroutines,
// so all counters go through the mutex.
type ScanSession struct {
	ID        string
	StartedAt time.Time

	mu                 sync.Mutex
	instrumentsScanned int
	instrumentsSkipped int
	quoteFailures      map[string]int // venue -> failure count
	opportunities      int
	executable         int
}

// NewScanSession starts a session for one tick.
func NewScanSession() *ScanSession {
	return &ScanSession{
		ID:            uuid.NewString(),
		StartedAt:     time.Now(),
		quoteFailures: make(map[string]int),
	}
}

// RecordScanned counts one instrument scanned to completion.
func (s *ScanSession) RecordScanned() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instrumentsScanned++
}

// RecordSkipped counts one instrument skipped because its previous scan was
// still in flight.
func (s *ScanSession) RecordSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instrumentsSkipped++
}

// RecordQuoteFailure counts a failed quote against its venue.
func (s *ScanSession) RecordQuoteFailure(venue string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quoteFailures[venue]++
}

// RecordOpportunity counts a sized opportunity; executable marks whether it
// cleared the threshold.
func (s *ScanSession) RecordOpportunity(executable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities++
	if executable {
		s.executable++
	}
}

// Summary is a point-in-time copy of the session counters.
type Summary struct {
	ID                 string
	StartedAt          time.Time
	Duration           time.Duration
	InstrumentsScanned int
	InstrumentsSkipped int
	QuoteFailures      map[string]int
	Opportunities      int
	Executable         int
}

// Summarize snapshots the counters.
func (s *ScanSession) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures := make(map[string]int, len(s.quoteFailures))
	for venue, n := range s.quoteFailures {
		failures[venue] = n
	}
	return Summary{
		ID:                 s.ID,
		StartedAt:          s.StartedAt,
		Duration:           time.Since(s.StartedAt),
		InstrumentsScanned: s.instrumentsScanned,
		InstrumentsSkipped: s.instrumentsSkipped,
		QuoteFailures:      failures,
		Opportunities:      s.opportunities,
		Executable:         s.executable,
	}
}
