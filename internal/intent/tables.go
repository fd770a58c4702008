package intent

import "regexp"

// cityTable resolves common destination mentions to canonical transport
// codes. Unknown places stay as free-text mentions; resolution here only
// gates which live-data fetchers become applicable.
var cityTable = map[string]Location{
	"tokyo":          {Name: "Tokyo", Code: "NRT", Country: "Japan", Currency: "JPY"},
	"osaka":          {Name: "Osaka", Code: "KIX", Country: "Japan", Currency: "JPY"},
	"paris":          {Name: "Paris", Code: "CDG", Country: "France", Currency: "EUR"},
	"london":         {Name: "London", Code: "LHR", Country: "United Kingdom", Currency: "GBP"},
	"new york":       {Name: "New York", Code: "JFK", Country: "United States", Currency: "USD"},
	"los angeles":    {Name: "Los Angeles", Code: "LAX", Country: "United States", Currency: "USD"},
	"san francisco":  {Name: "San Francisco", Code: "SFO", Country: "United States", Currency: "USD"},
	"chicago":        {Name: "Chicago", Code: "ORD", Country: "United States", Currency: "USD"},
	"rome":           {Name: "Rome", Code: "FCO", Country: "Italy", Currency: "EUR"},
	"milan":          {Name: "Milan", Code: "MXP", Country: "Italy", Currency: "EUR"},
	"madrid":         {Name: "Madrid", Code: "MAD", Country: "Spain", Currency: "EUR"},
	"barcelona":      {Name: "Barcelona", Code: "BCN", Country: "Spain", Currency: "EUR"},
	"berlin":         {Name: "Berlin", Code: "BER", Country: "Germany", Currency: "EUR"},
	"munich":         {Name: "Munich", Code: "MUC", Country: "Germany", Currency: "EUR"},
	"amsterdam":      {Name: "Amsterdam", Code: "AMS", Country: "Netherlands", Currency: "EUR"},
	"lisbon":         {Name: "Lisbon", Code: "LIS", Country: "Portugal", Currency: "EUR"},
	"athens":         {Name: "Athens", Code: "ATH", Country: "Greece", Currency: "EUR"},
	"vienna":         {Name: "Vienna", Code: "VIE", Country: "Austria", Currency: "EUR"},
	"prague":         {Name: "Prague", Code: "PRG", Country: "Czechia", Currency: "CZK"},
	"zurich":         {Name: "Zurich", Code: "ZRH", Country: "Switzerland", Currency: "CHF"},
	"dublin":         {Name: "Dublin", Code: "DUB", Country: "Ireland", Currency: "EUR"},
	"istanbul":       {Name: "Istanbul", Code: "IST", Country: "Turkey", Currency: "TRY"},
	"dubai":          {Name: "Dubai", Code: "DXB", Country: "United Arab Emirates", Currency: "AED"},
	"cairo":          {Name: "Cairo", Code: "CAI", Country: "Egypt", Currency: "EGP"},
	"singapore":      {Name: "Singapore", Code: "SIN", Country: "Singapore", Currency: "SGD"},
	"bangkok":        {Name: "Bangkok", Code: "BKK", Country: "Thailand", Currency: "THB"},
	"bali":           {Name: "Bali", Code: "DPS", Country: "Indonesia", Currency: "IDR"},
	"hong kong":      {Name: "Hong Kong", Code: "HKG", Country: "Hong Kong", Currency: "HKD"},
	"seoul":          {Name: "Seoul", Code: "ICN", Country: "South Korea", Currency: "KRW"},
	"delhi":          {Name: "Delhi", Code: "DEL", Country: "India", Currency: "INR"},
	"mumbai":         {Name: "Mumbai", Code: "BOM", Country: "India", Currency: "INR"},
	"sydney":         {Name: "Sydney", Code: "SYD", Country: "Australia", Currency: "AUD"},
	"toronto":        {Name: "Toronto", Code: "YYZ", Country: "Canada", Currency: "CAD"},
	"mexico city":    {Name: "Mexico City", Code: "MEX", Country: "Mexico", Currency: "MXN"},
	"rio de janeiro": {Name: "Rio de Janeiro", Code: "GIG", Country: "Brazil", Currency: "BRL"},
}

// tripRules is the ordered classification table. Every rule is evaluated;
// the highest priority match wins and ties resolve to the earliest rule, so
// classification is deterministic for any input.
var tripRules = []struct {
	re       *regexp.Regexp
	tag      TripType
	priority int
}{
	{regexp.MustCompile(`(?i)\b(flight|flights|fly|flying|airfare|airline|airlines|plane|ticket|tickets)\b`), TripFlight, 3},
	{regexp.MustCompile(`(?i)\b(hotel|hotels|hostel|accommodation|lodging|resort|airbnb|stay|staying)\b`), TripHotel, 3},
	{regexp.MustCompile(`(?i)\b(weather|temperature|forecast|climate|rain|raining|snow|sunny|humid|humidity)\b`), TripWeather, 2},
	{regexp.MustCompile(`(?i)\b(budget|cost|costs|price|prices|cheap|expensive|exchange|currency|money|afford|spend)\b`), TripBudget, 2},
}

// currencySymbols maps money symbols to ISO codes before code scanning.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

var currencyCodeRe = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|JPY|AUD|CAD|CHF|INR|SGD|THB|AED|TRY|KRW|HKD|MXN|BRL|CZK|IDR|EGP)\b`)

var currencyWords = map[string]string{
	"dollar":  "USD",
	"dollars": "USD",
	"euro":    "EUR",
	"euros":   "EUR",
	"pound":   "GBP",
	"pounds":  "GBP",
	"yen":     "JPY",
	"rupee":   "INR",
	"rupees":  "INR",
}
