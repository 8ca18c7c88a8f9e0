package domain

import (
	"fmt"
	"sync"
	"testing"
)

func oppWithID(id string) *Opportunity {
	return &Opportunity{ID: id}
}

func TestHistory_BoundedNewestFirst(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 5; i++ {
		h.Add(oppWithID(fmt.Sprintf("opp-%d", i)))
	}

	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}

	recent := h.Recent(10)
	want := []string{"opp-5", "opp-4", "opp-3"}
	if len(recent) != len(want) {
		t.Fatalf("Recent returned %d items, want %d", len(recent), len(want))
	}
	for i, id := range want {
		if recent[i].ID != id {
			t.Errorf("Recent[%d] = %s, want %s", i, recent[i].ID, id)
		}
	}
}

func TestHistory_RecentPartial(t *testing.T) {
	h := NewHistory(10)
	h.Add(oppWithID("a"))
	h.Add(oppWithID("b"))

	recent := h.Recent(1)
	if len(recent) != 1 || recent[0].ID != "b" {
		t.Errorf("Recent(1) = %v, want just the newest", recent)
	}
}

func TestHistory_ConcurrentAdd(t *testing.T) {
	h := NewHistory(50)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Add(oppWithID(fmt.Sprintf("opp-%d", i)))
		}(i)
	}
	wg.Wait()

	if h.Len() != 50 {
		t.Errorf("Len = %d, want capacity 50", h.Len())
	}
}

func TestScanSession_Counters(t *testing.T) {
	s := NewScanSession()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordScanned()
			s.RecordQuoteFailure("jupiter")
			s.RecordOpportunity(true)
		}()
	}
	wg.Wait()
	s.RecordSkipped()
	s.RecordOpportunity(false)

	sum := s.Summarize()
	if sum.InstrumentsScanned != 10 {
		t.Errorf("InstrumentsScanned = %d, want 10", sum.InstrumentsScanned)
	}
	if sum.InstrumentsSkipped != 1 {
		t.Errorf("InstrumentsSkipped = %d, want 1", sum.InstrumentsSkipped)
	}
	if sum.QuoteFailures["jupiter"] != 10 {
		t.Errorf("QuoteFailures[jupiter] = %d, want 10", sum.QuoteFailures["jupiter"])
	}
	if sum.Opportunities != 11 {
		t.Errorf("Opportunities = %d, want 11", sum.Opportunities)
	}
	if sum.Executable != 10 {
		t.Errorf("Executable = %d, want 10", sum.Executable)
	}
	if sum.ID == "" {
		t.Error("session ID must be set")
	}
}
