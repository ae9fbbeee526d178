package csvfeed

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountJunkRe   = regexp.MustCompile(`[^\d.,-]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	invisibleRe    = regexp.MustCompile("[\u200b-\u200d\ufeff\u00a0]")
	emailRe        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	emailHandleRe  = regexp.MustCompile(`[^a-z0-9._\-]+`)
	nonDigitRe     = regexp.MustCompile(`\D+`)
	nonPostalChars = regexp.MustCompile(`\s+`)
)

// ParseAmount cleans a raw money or quantity string and parses it as a
// decimal. Currency symbols and thousands separators are stripped; empty or
// non-numeric input yields zero. It never returns an error because the feed
// routinely carries junk values that must not block an order.
func ParseAmount(raw string) decimal.Decimal {
	s := amountJunkRe.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeSKU strips invisible characters (zero-width spaces, BOM,
// non-breaking spaces), trims, and collapses internal whitespace runs to a
// single space. Idempotent.
func NormalizeSKU(raw string) string {
	s := invisibleRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// PhoneDigits strips everything but digits from a phone number. An 11-digit
// number with a leading "1" drops the US country code.
func PhoneDigits(raw string) string {
	d := nonDigitRe.ReplaceAllString(raw, "")
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d
}

// StripWhitespace removes all whitespace from a string. Used for postal codes.
func StripWhitespace(raw string) string {
	return nonPostalChars.ReplaceAllString(raw, "")
}

// SafeEmail returns candidate when it is a syntactically valid email address.
// Otherwise it derives a deterministic placeholder from the marketplace
// username, or from the external order id when no username is known, so every
// order ends up with an addressable, unique-enough email.
func SafeEmail(candidate, username, fallbackID string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate != "" && emailRe.MatchString(candidate) {
		return candidate
	}
	handle := ""
	if username != "" {
		handle = emailHandleRe.ReplaceAllString(strings.ToLower(username), "")
	}
	if handle == "" {
		handle = "tiktok+" + fallbackID
	}
	return handle + "@tiktok.local"
}

// usStates maps 2-letter codes to lowercase full names. Covers the 50
// states, DC, and the shippable territories.
var usStates = map[string]string{
	"AL": "alabama", "AK": "alaska", "AZ": "arizona", "AR": "arkansas",
	"CA": "california", "CO": "colorado", "CT": "connecticut", "DE": "delaware",
	"DC": "district of columbia", "FL": "florida", "GA": "georgia", "HI": "hawaii",
	"ID": "idaho", "IL": "illinois", "IN": "indiana", "IA": "iowa",
	"KS": "kansas", "KY": "kentucky", "LA": "louisiana", "ME": "maine",
	"MD": "maryland", "MA": "massachusetts", "MI": "michigan", "MN": "minnesota",
	"MS": "mississippi", "MO": "missouri", "MT": "montana", "NE": "nebraska",
	"NV": "nevada", "NH": "new hampshire", "NJ": "new jersey", "NM": "new mexico",
	"NY": "new york", "NC": "north carolina", "ND": "north dakota", "OH": "ohio",
	"OK": "oklahoma", "OR": "oregon", "PA": "pennsylvania", "RI": "rhode island",
	"SC": "south carolina", "SD": "south dakota", "TN": "tennessee", "TX": "texas",
	"UT": "utah", "VT": "vermont", "VA": "virginia", "WA": "washington",
	"WV": "west virginia", "WI": "wisconsin", "WY": "wyoming",
	"AS": "american samoa", "GU": "guam", "MP": "northern mariana islands",
	"PR": "puerto rico", "VI": "u.s. virgin islands",
}

// stateAliases covers spellings the canonical table misses
var stateAliases = map[string]string{
	"washington dc":        "DC",
	"district of columbia": "DC",
}

// NormalizeState resolves a US state to its 2-letter code, matching codes and
// full names case-insensitively. Unrecognized input is returned trimmed but
// otherwise unchanged; the result is best-effort, not validated.
func NormalizeState(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	upper := strings.ToUpper(s)
	if _, ok := usStates[upper]; ok {
		return upper
	}
	lower := strings.ToLower(s)
	for code, name := range usStates {
		if name == lower {
			return code
		}
	}
	if code, ok := stateAliases[lower]; ok {
		return code
	}
	return s
}
