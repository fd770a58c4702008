// Package format post-processes raw completion text into the user-facing
// message. Apply is a pure function: same inputs, same output.
package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mlenarti/itinera/internal/travel"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

var (
	// Completion models occasionally echo the prompt scaffolding back.
	artifactPrefixes = []string{"YOUR RESPONSE:", "RESPONSE:", "Assistant:", "ASSISTANT:"}

	codeBeforeAmountRe = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|INR)\s?(\d[\d,]*(?:\.\d+)?)`)
	amountBeforeCodeRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s?(USD|EUR|GBP|JPY|INR)\b`)
	celsiusRe          = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s?(?:°\s?C|degrees\s+celsius|deg\s?C)\b`)
	excessNewlinesRe   = regexp.MustCompile(`\n{3,}`)
)

const disclaimerPrefix = "Note: live data was unavailable from"

// Apply cleans prompt artifacts out of the raw completion, normalizes
// currency and temperature rendering, and appends a data-approximation
// disclaimer when any live source failed during the turn.
func Apply(raw string, results []travel.FetchResult) string {
	out := stripArtifacts(raw)
	out = codeBeforeAmountRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := codeBeforeAmountRe.FindStringSubmatch(m)
		return currencySymbols[parts[1]] + parts[2]
	})
	out = amountBeforeCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := amountBeforeCodeRe.FindStringSubmatch(m)
		return currencySymbols[parts[2]] + parts[1]
	})
	out = celsiusRe.ReplaceAllString(out, "$1°C")
	out = excessNewlinesRe.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)

	if d := disclaimer(results); d != "" && !strings.Contains(out, disclaimerPrefix) {
		if out != "" {
			out += "\n\n"
		}
		out += d
	}

	// Formatting must never lose the answer: an empty result falls back to
	// the raw completion text.
	if out == "" {
		return strings.TrimSpace(raw)
	}
	return out
}

func stripArtifacts(s string) string {
	out := strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		for _, p := range artifactPrefixes {
			if strings.HasPrefix(out, p) {
				out = strings.TrimSpace(strings.TrimPrefix(out, p))
				changed = true
			}
		}
	}
	return out
}

func disclaimer(results []travel.FetchResult) string {
	var failed []string
	for _, r := range results {
		if r.Status == travel.StatusUnavailable {
			failed = append(failed, r.Source)
		}
	}
	if len(failed) == 0 {
		return ""
	}
	sort.Strings(failed)
	return fmt.Sprintf("%s %s; figures may be approximate or out of date. Please verify with official sources.",
		disclaimerPrefix, strings.Join(failed, ", "))
}
