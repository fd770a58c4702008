package intent

import (
	"fmt"
	"strings"
	"time"
)

// TripType tags the dominant travel concern of an utterance.
type TripType string

const (
	TripFlight  TripType = "flight"
	TripHotel   TripType = "hotel"
	TripWeather TripType = "weather"
	TripBudget  TripType = "budget"
	TripGeneral TripType = "general"
)

// Location is a place mention resolved against the static city table.
// Code is empty when the mention could not be resolved.
type Location struct {
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Country  string `json:"country,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Intent is the structured reading of one user utterance. All fields are
// best-effort; extraction never fails, it just leaves fields empty.
type Intent struct {
	Origin      *Location   `json:"origin,omitempty"`
	Destination *Location   `json:"destination,omitempty"`
	Unresolved  []string    `json:"unresolved,omitempty"`
	Dates       []time.Time `json:"dates,omitempty"`
	PastDates   bool        `json:"past_dates,omitempty"`
	Type        TripType    `json:"type"`
	Currencies  []string    `json:"currencies,omitempty"`
}

// Summary renders the intent as a short line of grounding text. This is the
// first (highest-priority) section of the assembled context.
func (it Intent) Summary() string {
	var b strings.Builder
	b.WriteString("Trip type: ")
	b.WriteString(string(it.Type))
	if it.Origin != nil {
		fmt.Fprintf(&b, ". Origin: %s", it.Origin.Name)
		if it.Origin.Code != "" {
			fmt.Fprintf(&b, " (%s)", it.Origin.Code)
		}
	}
	if it.Destination != nil {
		fmt.Fprintf(&b, ". Destination: %s", it.Destination.Name)
		if it.Destination.Code != "" {
			fmt.Fprintf(&b, " (%s)", it.Destination.Code)
		}
	}
	for _, u := range it.Unresolved {
		fmt.Fprintf(&b, ". Mentioned place: %s", u)
	}
	if len(it.Dates) > 0 {
		b.WriteString(". Dates:")
		for _, d := range it.Dates {
			b.WriteString(" " + d.Format("2006-01-02"))
		}
		if it.PastDates {
			b.WriteString(" (some dates are in the past)")
		}
	}
	if len(it.Currencies) > 0 {
		b.WriteString(". Currencies: " + strings.Join(it.Currencies, ", "))
	}
	b.WriteString(".")
	return b.String()
}

// HasLocation reports whether any place was resolved or at least mentioned.
func (it Intent) HasLocation() bool {
	return it.Origin != nil || it.Destination != nil || len(it.Unresolved) > 0
}

// MonetaryContext reports whether the utterance carries a money signal that
// makes the currency fetcher applicable.
func (it Intent) MonetaryContext() bool {
	return len(it.Currencies) > 0 || it.Type == TripBudget
}

// TargetCurrencies returns the currencies worth quoting: the ones mentioned
// outright, otherwise the destination country's currency.
func (it Intent) TargetCurrencies() []string {
	if len(it.Currencies) > 0 {
		return it.Currencies
	}
	if it.Destination != nil && it.Destination.Currency != "" {
		return []string{it.Destination.Currency}
	}
	return nil
}
