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

const SourceWeather = "weather"

// WeatherClient resolves a place name through a geocoding endpoint and then
// pulls the current conditions plus a short forecast. Missing travel dates
// are fine; the forecast window covers the near term either way.
type WeatherClient struct {
	geocodeURL  string
	forecastURL string
	timeout     time.Duration
	client      *http.Client
}

func NewWeatherClient(geocodeURL, forecastURL string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		geocodeURL:  strings.TrimSpace(geocodeURL),
		forecastURL: strings.TrimSpace(forecastURL),
		timeout:     timeout,
		client:      &http.Client{},
	}
}

func (c *WeatherClient) Source() string { return SourceWeather }

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
	} `json:"current"`
	Daily struct {
		MaxTemps      []float64 `json:"temperature_2m_max"`
		MinTemps      []float64 `json:"temperature_2m_min"`
		Precipitation []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (c *WeatherClient) Fetch(ctx context.Context, it intent.Intent) FetchResult {
	place := weatherPlace(it)
	if place == "" {
		return NotApplicable(SourceWeather, "no location mentioned")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var geo geocodeResponse
	geoURL := c.geocodeURL + "?" + url.Values{"name": {place}, "count": {"1"}}.Encode()
	if err := getJSON(ctx, c.client, geoURL, nil, &geo); err != nil {
		return Unavailable(SourceWeather, failureReason(err))
	}
	if len(geo.Results) == 0 {
		return Unavailable(SourceWeather, fmt.Sprintf("location %q not found", place))
	}
	loc := geo.Results[0]

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", loc.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	q.Set("current", "temperature_2m,relative_humidity_2m")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("timezone", "auto")

	var fc forecastResponse
	if err := getJSON(ctx, c.client, c.forecastURL+"?"+q.Encode(), nil, &fc); err != nil {
		return Unavailable(SourceWeather, failureReason(err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather in %s, %s: currently %.1f°C, humidity %.0f%%.",
		loc.Name, loc.Country, fc.Current.Temperature, fc.Current.Humidity)
	if n := min(len(fc.Daily.MaxTemps), len(fc.Daily.MinTemps)); n > 0 {
		if n > 7 {
			n = 7
		}
		lo, hi := fc.Daily.MinTemps[0], fc.Daily.MaxTemps[0]
		for i := 1; i < n; i++ {
			if fc.Daily.MinTemps[i] < lo {
				lo = fc.Daily.MinTemps[i]
			}
			if fc.Daily.MaxTemps[i] > hi {
				hi = fc.Daily.MaxTemps[i]
			}
		}
		fmt.Fprintf(&b, " Next %d days: %.1f°C to %.1f°C.", n, lo, hi)
	}
	return Success(SourceWeather, b.String())
}

// weatherPlace prefers the destination, falls back to the origin, and as a
// last resort tries an unresolved mention since the geocoder handles free
// text the city table cannot.
func weatherPlace(it intent.Intent) string {
	if it.Destination != nil {
		return it.Destination.Name
	}
	if it.Origin != nil {
		return it.Origin.Name
	}
	if len(it.Unresolved) > 0 {
		return it.Unresolved[0]
	}
	return ""
}
