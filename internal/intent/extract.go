package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mlenarti/itinera/internal/session"
)

var (
	isoDateRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	monthDayRe = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\b`)
	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\b(?:,?\s*(\d{4}))?`)
	placeRe    = regexp.MustCompile(`\b(?:from|to|in|at|for)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`)
)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// Extract parses one utterance into a structured Intent. It never fails:
// malformed or empty input yields an Intent with empty fields and the
// general trip type, so every downstream stage can still run.
func Extract(utterance string, prior []session.Turn) Intent {
	it := Intent{Type: TripGeneral}
	text := strings.TrimSpace(utterance)
	if text == "" {
		return it
	}
	lower := strings.ToLower(text)

	it.Type = classify(lower)
	it.Origin, it.Destination = resolveLocations(lower)
	it.Unresolved = unresolvedMentions(text)
	it.Dates, it.PastDates = extractDates(lower, time.Now().UTC())
	it.Currencies = detectCurrencies(text)
	if it.Type == TripGeneral && len(it.Currencies) > 0 {
		it.Type = TripBudget
	}

	// A follow-up like "and how much would hotels cost?" carries no place of
	// its own; inherit the most recently mentioned destination.
	if it.Origin == nil && it.Destination == nil && len(it.Unresolved) == 0 {
		for i := len(prior) - 1; i >= 0; i-- {
			_, dest := resolveLocations(strings.ToLower(prior[i].UserText))
			if dest != nil {
				it.Destination = dest
				break
			}
		}
	}
	return it
}

// classify applies the ordered rule table. Higher priority wins; on equal
// priority the earlier rule wins, so flight outranks hotel outranks weather
// outranks budget on mixed utterances.
func classify(lower string) TripType {
	best := TripGeneral
	bestPriority := 0
	for _, r := range tripRules {
		if r.priority > bestPriority && r.re.MatchString(lower) {
			best = r.tag
			bestPriority = r.priority
		}
	}
	return best
}

type cityMatch struct {
	idx  int
	prev string
	loc  Location
}

func resolveLocations(lower string) (origin, dest *Location) {
	var matches []cityMatch
	for name, loc := range cityTable {
		idx := wordIndex(lower, name)
		if idx < 0 {
			continue
		}
		matches = append(matches, cityMatch{idx: idx, prev: precedingWord(lower, idx), loc: loc})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].idx < matches[j].idx })

	var pending []Location
	for _, m := range matches {
		loc := m.loc
		switch m.prev {
		case "from":
			if origin == nil {
				origin = &loc
			}
		case "to", "in", "at", "for", "visit", "visiting":
			if dest == nil {
				dest = &loc
			}
		default:
			pending = append(pending, loc)
		}
	}
	for i := range pending {
		loc := pending[i]
		switch {
		case origin == nil && dest == nil && len(pending) >= 2 && i == 0:
			origin = &loc
		case dest == nil:
			dest = &loc
		case origin == nil:
			origin = &loc
		}
	}
	return origin, dest
}

// wordIndex finds name in text on word boundaries, or -1.
func wordIndex(text, name string) int {
	start := 0
	for {
		i := strings.Index(text[start:], name)
		if i < 0 {
			return -1
		}
		i += start
		end := i + len(name)
		beforeOK := i == 0 || !isWordChar(text[i-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return i
		}
		start = i + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func precedingWord(text string, idx int) string {
	fields := strings.Fields(text[:idx])
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ",.!?")
}

// unresolvedMentions keeps capitalized place-looking mentions that the city
// table cannot resolve, so the prompt still carries them as free text.
func unresolvedMentions(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range placeRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		lower := strings.ToLower(name)
		if _, known := cityTable[lower]; known {
			continue
		}
		if _, ok := months[lower]; ok {
			continue
		}
		first := strings.Fields(lower)[0]
		if first == "i" || first == "my" || first == "the" {
			continue
		}
		if _, known := cityTable[first]; known {
			continue
		}
		if !seen[lower] {
			seen[lower] = true
			out = append(out, name)
		}
	}
	return out
}

// extractDates normalizes date mentions to UTC calendar dates. Past dates
// are flagged rather than dropped; fetchers decide applicability.
func extractDates(lower string, now time.Time) ([]time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var dates []time.Time

	for _, m := range isoDateRe.FindAllStringSubmatch(lower, -1) {
		if d, err := time.ParseInLocation("2006-01-02", m[1], time.UTC); err == nil {
			dates = append(dates, d)
		}
	}
	for _, m := range monthDayRe.FindAllStringSubmatch(lower, -1) {
		dates = appendMonthDay(dates, m[1], m[2], m[3], today)
	}
	for _, m := range dayMonthRe.FindAllStringSubmatch(lower, -1) {
		dates = appendMonthDay(dates, m[2], m[1], m[3], today)
	}
	if wordIndex(lower, "today") >= 0 {
		dates = append(dates, today)
	}
	if wordIndex(lower, "tomorrow") >= 0 {
		dates = append(dates, today.AddDate(0, 0, 1))
	}

	dates = dedupeDates(dates)
	past := false
	for _, d := range dates {
		if d.Before(today) {
			past = true
		}
	}
	return dates, past
}

func appendMonthDay(dates []time.Time, monthWord, dayStr, yearStr string, today time.Time) []time.Time {
	month := months[strings.ToLower(monthWord)]
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 || month == 0 {
		return dates
	}
	year := today.Year()
	if yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}
	return append(dates, time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func dedupeDates(dates []time.Time) []time.Time {
	seen := map[time.Time]bool{}
	out := dates[:0]
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func detectCurrencies(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(code string) {
		code = strings.ToUpper(code)
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	for sym, code := range currencySymbols {
		if strings.Contains(text, sym) {
			add(code)
		}
	}
	for _, m := range currencyCodeRe.FindAllString(text, -1) {
		add(m)
	}
	lower := strings.ToLower(text)
	for word, code := range currencyWords {
		if wordIndex(lower, word) >= 0 {
			add(code)
		}
	}
	sort.Strings(out)
	return out
}
