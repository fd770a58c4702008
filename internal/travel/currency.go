package travel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mlenarti/itinera/internal/intent"
)

const SourceCurrency = "currency"

// commonCurrencies pads the quote list on broad budget questions.
var commonCurrencies = []string{"EUR", "GBP", "JPY", "AUD", "CAD", "INR"}

const currencyQuoteCap = 6

// CurrencyClient quotes exchange rates against a configured home currency.
// Without a monetary signal in the intent the source is not applicable.
type CurrencyClient struct {
	baseURL string
	base    string
	timeout time.Duration
	client  *http.Client
}

func NewCurrencyClient(baseURL, baseCurrency string, timeout time.Duration) *CurrencyClient {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if base == "" {
		base = "USD"
	}
	return &CurrencyClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		base:    base,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (c *CurrencyClient) Source() string { return SourceCurrency }

type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func (c *CurrencyClient) Fetch(ctx context.Context, it intent.Intent) FetchResult {
	if !it.MonetaryContext() {
		return NotApplicable(SourceCurrency, "no monetary context")
	}
	targets := it.TargetCurrencies()
	if len(targets) == 0 {
		return NotApplicable(SourceCurrency, "no currency detected or inferable")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var res ratesResponse
	if err := getJSON(ctx, c.client, c.baseURL+"/v4/latest/"+c.base, nil, &res); err != nil {
		return Unavailable(SourceCurrency, failureReason(err))
	}

	quotes := quoteList(targets, c.base)
	var b strings.Builder
	fmt.Fprintf(&b, "Exchange rates (base %s, %s):", c.base, res.Date)
	quoted := 0
	for _, code := range quotes {
		rate, ok := res.Rates[code]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n- 1 %s = %.4f %s", c.base, rate, code)
		quoted++
	}
	if quoted == 0 {
		return Unavailable(SourceCurrency, "no rates for requested currencies")
	}
	return Success(SourceCurrency, b.String())
}

// quoteList is the detected currencies first, topped up with the common set,
// capped and with the base currency excluded.
func quoteList(targets []string, base string) []string {
	seen := map[string]bool{base: true}
	var out []string
	for _, code := range append(append([]string(nil), targets...), commonCurrencies...) {
		code = strings.ToUpper(code)
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
		if len(out) == currencyQuoteCap {
			break
		}
	}
	return out
}
