package travel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mlenarti/itinera/internal/intent"
)

func flightIntent() intent.Intent {
	return intent.Intent{
		Type:        intent.TripFlight,
		Origin:      &intent.Location{Name: "Tokyo", Code: "NRT", Country: "Japan", Currency: "JPY"},
		Destination: &intent.Location{Name: "Paris", Code: "CDG", Country: "France", Currency: "EUR"},
		Dates:       []time.Time{time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFlightsFetchRendersOffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("origin"); got != "NRT" {
			t.Errorf("origin = %q, want NRT", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "k1" {
			t.Errorf("X-Api-Key = %q, want k1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"offers":[{"carrier":"Air France","flight":"AF275","price":612.40,"currency":"EUR","stops":0}]}`))
	}))
	defer srv.Close()

	c := NewFlightsClient(srv.URL, "k1", time.Second)
	res := c.Fetch(context.Background(), flightIntent())
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %q (%s), want success", res.Status, res.Reason)
	}
	for _, want := range []string{"NRT", "CDG", "2026-03-15", "Air France", "612.40 EUR", "nonstop"} {
		if !strings.Contains(res.Summary, want) {
			t.Fatalf("Summary = %q, missing %q", res.Summary, want)
		}
	}
}

func TestFlightsFetchNotApplicableWithoutRoute(t *testing.T) {
	c := NewFlightsClient("http://unused.invalid", "", time.Second)

	it := flightIntent()
	it.Origin = nil
	if res := c.Fetch(context.Background(), it); res.Status != StatusNotApplicable {
		t.Fatalf("missing origin: Status = %q, want not_applicable", res.Status)
	}

	it = flightIntent()
	it.Dates = nil
	if res := c.Fetch(context.Background(), it); res.Status != StatusNotApplicable {
		t.Fatalf("missing date: Status = %q, want not_applicable", res.Status)
	}
}

func TestFlightsFetchServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFlightsClient(srv.URL, "", time.Second)
	res := c.Fetch(context.Background(), flightIntent())
	if res.Status != StatusUnavailable {
		t.Fatalf("Status = %q, want unavailable", res.Status)
	}
	if !strings.Contains(res.Reason, "500") {
		t.Fatalf("Reason = %q, want status code mentioned", res.Reason)
	}
}

func TestFlightsFetchTimeoutIsUnavailable(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewFlightsClient(srv.URL, "", 50*time.Millisecond)
	res := c.Fetch(context.Background(), flightIntent())
	if res.Status != StatusUnavailable {
		t.Fatalf("Status = %q, want unavailable", res.Status)
	}
	if res.Reason != "timeout" {
		t.Fatalf("Reason = %q, want timeout", res.Reason)
	}
}

func TestWeatherFetchCurrentAndForecast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Paris" {
			t.Errorf("geocode name = %q, want Paris", got)
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"Paris","country":"France","latitude":48.85,"longitude":2.35}]}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":21.3,"relative_humidity_2m":55},
			"daily":{"temperature_2m_max":[24,25,23],"temperature_2m_min":[14,13,15],"precipitation_sum":[0,1.2,0]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewWeatherClient(srv.URL+"/geocode", srv.URL+"/forecast", time.Second)
	it := intent.Intent{Type: intent.TripWeather, Destination: &intent.Location{Name: "Paris", Code: "CDG"}}
	res := c.Fetch(context.Background(), it)
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %q (%s), want success", res.Status, res.Reason)
	}
	for _, want := range []string{"Paris, France", "21.3°C", "humidity 55%", "13.0°C to 25.0°C"} {
		if !strings.Contains(res.Summary, want) {
			t.Fatalf("Summary = %q, missing %q", res.Summary, want)
		}
	}
}

func TestWeatherFetchNotApplicableWithoutLocation(t *testing.T) {
	c := NewWeatherClient("http://unused.invalid", "http://unused.invalid", time.Second)
	res := c.Fetch(context.Background(), intent.Intent{Type: intent.TripGeneral})
	if res.Status != StatusNotApplicable {
		t.Fatalf("Status = %q, want not_applicable", res.Status)
	}
}

func TestWeatherFetchUnknownPlaceIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, srv.URL, time.Second)
	res := c.Fetch(context.Background(), intent.Intent{Unresolved: []string{"Atlantis"}})
	if res.Status != StatusUnavailable {
		t.Fatalf("Status = %q, want unavailable", res.Status)
	}
	if !strings.Contains(res.Reason, "Atlantis") {
		t.Fatalf("Reason = %q, want place named", res.Reason)
	}
}

func TestCurrencyFetchQuotesDetectedAndCommon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/latest/USD" {
			t.Errorf("path = %q, want /v4/latest/USD", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"base":"USD","date":"2026-08-29","rates":{"EUR":0.91,"GBP":0.78,"JPY":146.2,"AUD":1.5,"CAD":1.36,"INR":83.1}}`))
	}))
	defer srv.Close()

	c := NewCurrencyClient(srv.URL, "USD", time.Second)
	it := intent.Intent{Type: intent.TripBudget, Currencies: []string{"EUR"}}
	res := c.Fetch(context.Background(), it)
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %q (%s), want success", res.Status, res.Reason)
	}
	if !strings.Contains(res.Summary, "1 USD = 0.9100 EUR") {
		t.Fatalf("Summary = %q, missing EUR quote", res.Summary)
	}
}

func TestCurrencyFetchNotApplicableWithoutMoneySignal(t *testing.T) {
	c := NewCurrencyClient("http://unused.invalid", "USD", time.Second)
	it := intent.Intent{Type: intent.TripWeather, Destination: &intent.Location{Name: "Paris", Currency: "EUR"}}
	if res := c.Fetch(context.Background(), it); res.Status != StatusNotApplicable {
		t.Fatalf("Status = %q, want not_applicable", res.Status)
	}
}
