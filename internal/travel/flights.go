package travel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mlenarti/itinera/internal/intent"
)

const SourceFlights = "flights"

// flightOffersToRender caps how many offers end up in the grounding text.
const flightOffersToRender = 3

// FlightsClient queries a fare-offers API. It needs a fully resolved route
// (origin code, destination code, travel date); anything less makes the
// source not applicable for the turn.
type FlightsClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewFlightsClient(baseURL, apiKey string, timeout time.Duration) *FlightsClient {
	return &FlightsClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (c *FlightsClient) Source() string { return SourceFlights }

type flightOffer struct {
	Carrier  string  `json:"carrier"`
	Flight   string  `json:"flight"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Stops    int     `json:"stops"`
}

type offersResponse struct {
	Offers []flightOffer `json:"offers"`
}

func (c *FlightsClient) Fetch(ctx context.Context, it intent.Intent) FetchResult {
	if it.Origin == nil || it.Origin.Code == "" {
		return NotApplicable(SourceFlights, "no resolved origin")
	}
	if it.Destination == nil || it.Destination.Code == "" {
		return NotApplicable(SourceFlights, "no resolved destination")
	}
	if len(it.Dates) == 0 {
		return NotApplicable(SourceFlights, "no travel date")
	}
	date := it.Dates[0].Format("2006-01-02")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("origin", it.Origin.Code)
	q.Set("destination", it.Destination.Code)
	q.Set("date", date)

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("X-Api-Key", c.apiKey)
	}

	var res offersResponse
	if err := getJSON(ctx, c.client, c.baseURL+"/v1/offers?"+q.Encode(), header, &res); err != nil {
		return Unavailable(SourceFlights, failureReason(err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Flight offers %s -> %s on %s:", it.Origin.Code, it.Destination.Code, date)
	if len(res.Offers) == 0 {
		b.WriteString(" none found for this route and date.")
		return Success(SourceFlights, b.String())
	}
	for i, o := range res.Offers {
		if i == flightOffersToRender {
			break
		}
		stops := "nonstop"
		if o.Stops == 1 {
			stops = "1 stop"
		} else if o.Stops > 1 {
			stops = fmt.Sprintf("%d stops", o.Stops)
		}
		fmt.Fprintf(&b, "\n- %s %s: %.2f %s, %s", o.Carrier, o.Flight, o.Price, o.Currency, stops)
	}
	return Success(SourceFlights, b.String())
}
