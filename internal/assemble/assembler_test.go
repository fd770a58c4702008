package assemble

import (
	"strings"
	"testing"
	"time"

	"github.com/mlenarti/itinera/internal/intent"
	"github.com/mlenarti/itinera/internal/retrieval"
	"github.com/mlenarti/itinera/internal/travel"
)

func sampleIntent() intent.Intent {
	return intent.Intent{
		Type:        intent.TripFlight,
		Origin:      &intent.Location{Name: "Tokyo", Code: "NRT"},
		Destination: &intent.Location{Name: "Paris", Code: "CDG"},
		Dates:       []time.Time{time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
}

func samplePassages(n int) []retrieval.Passage {
	out := make([]retrieval.Passage, n)
	for i := range out {
		out[i] = retrieval.Passage{Text: strings.Repeat("x", 40), Score: float64(i), Rank: i}
	}
	return out
}

func TestAssembleNeverExceedsBudget(t *testing.T) {
	it := sampleIntent()
	results := []travel.FetchResult{
		travel.Success("flights", strings.Repeat("f", 60)),
		travel.Success("weather", strings.Repeat("w", 60)),
	}
	passages := samplePassages(5)

	for budget := 0; budget <= 600; budget += 7 {
		c := Assemble(it, results, passages, budget)
		if c.Size > budget {
			t.Fatalf("budget %d: Size = %d exceeds budget", budget, c.Size)
		}
		if got := len(c.Text()); got != c.Size {
			t.Fatalf("budget %d: rendered length %d != Size %d", budget, got, c.Size)
		}
		// No section may be cut mid-item.
		for _, s := range c.Sections {
			if !strings.Contains(c.Text(), s.Text) {
				t.Fatalf("budget %d: section %q partially emitted", budget, s.Label)
			}
		}
	}
}

func TestAssemblePriorityOrderAndCutoff(t *testing.T) {
	it := sampleIntent()
	results := []travel.FetchResult{travel.Success("weather", strings.Repeat("w", 50))}
	passages := samplePassages(3)

	full := Assemble(it, results, passages, 1<<20)
	if len(full.Sections) != 5 {
		t.Fatalf("sections = %d, want 5", len(full.Sections))
	}
	if full.Sections[0].Kind != KindIntent || full.Sections[1].Kind != KindLiveData {
		t.Fatalf("order wrong: %+v", full.Sections)
	}
	if full.Truncated {
		t.Fatalf("Truncated = true on unbounded budget")
	}

	// Budget that fits the intent summary and the weather section but not
	// the first passage: everything from the passage down is dropped.
	cutoff := len(full.Sections[0].Text) + len(sectionSep) + len(full.Sections[1].Text)
	c := Assemble(it, results, passages, cutoff)
	if len(c.Sections) != 2 {
		t.Fatalf("sections = %d, want 2 at cutoff budget", len(c.Sections))
	}
	if !c.Truncated {
		t.Fatalf("Truncated = false, want true")
	}
	if c.Sections[0].Kind != KindIntent || c.Sections[1].Label != "weather" {
		t.Fatalf("kept wrong sections: %+v", c.Sections)
	}
}

func TestAssembleDropsEverythingWhenIntentDoesNotFit(t *testing.T) {
	c := Assemble(sampleIntent(), nil, samplePassages(2), 3)
	if !c.Empty() {
		t.Fatalf("sections = %+v, want none", c.Sections)
	}
	if c.Size != 0 || !c.Truncated {
		t.Fatalf("Size = %d Truncated = %v, want 0/true", c.Size, c.Truncated)
	}
}

func TestAssembleOmitsNonSuccessResults(t *testing.T) {
	it := sampleIntent()
	results := []travel.FetchResult{
		travel.Unavailable("flights", "timeout"),
		travel.Success("weather", "Weather in Paris: currently 21.3°C."),
		travel.NotApplicable("currency", "no monetary context"),
	}

	c := Assemble(it, results, nil, 1<<20)
	text := c.Text()
	if !strings.Contains(text, "21.3°C") {
		t.Fatalf("weather rendering missing: %q", text)
	}
	if strings.Contains(text, "timeout") || strings.Contains(strings.ToLower(text), "[flights]") {
		t.Fatalf("failed flight fetch leaked into context: %q", text)
	}
}

func TestAssembleFlightOfferKeepsNumbers(t *testing.T) {
	it := sampleIntent()
	results := []travel.FetchResult{
		travel.Success("flights", "Flight offers NRT -> CDG on 2026-03-15:\n- Air France AF275: 612.40 EUR, nonstop"),
	}
	c := Assemble(it, results, nil, 1<<20)
	for _, want := range []string{"[Flights]", "Air France", "612.40 EUR"} {
		if !strings.Contains(c.Text(), want) {
			t.Fatalf("context missing %q: %q", want, c.Text())
		}
	}
}

func TestAssemblePassageOnlyWhenNoLiveData(t *testing.T) {
	it := intent.Intent{Type: intent.TripGeneral}
	passages := []retrieval.Passage{{Text: "Pack light for long trips.", Rank: 0}}
	c := Assemble(it, nil, passages, 1<<20)
	if !strings.Contains(c.Text(), "[Reference 1]") || !strings.Contains(c.Text(), "Pack light") {
		t.Fatalf("passage section missing: %q", c.Text())
	}
}

func TestWithoutLastDropsLowestPriority(t *testing.T) {
	c := Assemble(sampleIntent(), nil, samplePassages(2), 1<<20)
	trimmed := c.WithoutLast()
	if len(trimmed.Sections) != len(c.Sections)-1 {
		t.Fatalf("sections = %d, want %d", len(trimmed.Sections), len(c.Sections)-1)
	}
	if trimmed.Size >= c.Size {
		t.Fatalf("Size = %d, want smaller than %d", trimmed.Size, c.Size)
	}
	if !trimmed.Truncated {
		t.Fatalf("Truncated = false after dropping a section")
	}
}
