/*
Package normalize implements field normalizers and the normalization pipeline.

PURPOSE:
  Carrier statements disagree about everything: amounts arrive as "$1,234.50"
  or "(100)" or plain floats, dates in four different layouts, names in any
  capitalization, transaction types in each carrier's own vocabulary. This
  package contains the stateless transforms that force every field into one
  canonical format, and the pipeline that applies them to a batch in a fixed
  order.

KEY CONCEPTS IN THIS FILE (fields.go):
  - CleanAmount: Currency-string cleaning into decimal.Decimal
  - CleanDate:   Multi-layout date parsing into canonical.Date
  - CleanName:   Whitespace collapse + title case, blank -> sentinel
  - MapTransactionType: Closed-vocabulary mapping with synonym table
  - CleanIdentifier: Alphanumeric-only identifier stripping

DESIGN PRINCIPLES:
  1. Lenient on values: A malformed value is repaired with a documented
     default, never an error. Schema problems are handled in pipeline.go.
  2. Idempotent: Each transform is a no-op on its own output. The pipeline's
     idempotence follows from this.
  3. Stateless: Every function here is a pure transform.

SEE ALSO:
  - pipeline.go: Applies these transforms in a fixed stage order
  - match/: Name similarity used for optional agent deduplication
*/
package normalize

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/canonical"
)

// =============================================================================
// AMOUNT CLEANER
// =============================================================================

// CleanAmount coerces an arbitrary scalar into a commission amount.
// Missing input (nil or a blank string) defaults to zero. Unparsable input
// also defaults to zero, with ok=false so callers can record the anomaly.
//
// String cleaning order: strip currency symbol and thousands separators,
// rewrite "(x)" to "-x", rewrite a leading "-$" to "-", then parse. If the
// parse fails, strip everything that is not a digit, sign, or dot and retry
// once before giving up.
func CleanAmount(v any) (amount decimal.Decimal, ok bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, true
	case decimal.Decimal:
		return val, true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case float32:
		return cleanFloatAmount(float64(val))
	case float64:
		return cleanFloatAmount(val)
	case string:
		return cleanStringAmount(val)
	default:
		return decimal.Zero, false
	}
}

func cleanFloatAmount(f float64) (decimal.Decimal, bool) {
	// NaN and infinities are unrepresentable as commission amounts.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func cleanStringAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	if s == "" {
		return decimal.Zero, true
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	}

	if d, err := decimal.NewFromString(s); err == nil {
		return d, true
	}

	// Fallback: keep only numeric characters, sign, and dot, then retry once.
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == '-' || r == '+' {
			b.WriteRune(r)
		}
	}
	if d, err := decimal.NewFromString(b.String()); err == nil {
		return d, true
	}
	return decimal.Zero, false
}

// =============================================================================
// DATE CANONICALIZER
// =============================================================================

// dateLayouts are tried in order; first match wins.
var dateLayouts = []string{
	"2006-01-02", // YYYY-MM-DD
	"01/02/2006", // MM/DD/YYYY
	"02-01-2006", // DD-MM-YYYY
	"2006/01/02", // YYYY/MM/DD
}

// CleanDate coerces a scalar into a nullable canonical date. Strings are
// tried against the supported layouts in order; no match yields the null
// date, never an error.
func CleanDate(v any) canonical.Date {
	switch val := v.(type) {
	case nil:
		return canonical.Date{}
	case canonical.Date:
		return val
	case time.Time:
		return canonical.DateOf(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return canonical.Date{}
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return canonical.DateOf(t)
			}
		}
		return canonical.Date{}
	default:
		return canonical.Date{}
	}
}

// =============================================================================
// NAME CANONICALIZER
// =============================================================================

// CleanName collapses whitespace and title-cases each word. Nil, blank, or
// whitespace-only input maps to the UnknownAgent sentinel so aggregation
// never drops a record for lack of an agent key.
func CleanName(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return canonical.UnknownAgent
	case string:
		s = val
	default:
		return canonical.UnknownAgent
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return canonical.UnknownAgent
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// CleanOptionalName is CleanName without the sentinel: blank input stays
// empty. Used for agency names, which may legitimately be absent.
func CleanOptionalName(v any) string {
	s, isString := v.(string)
	if !isString {
		return ""
	}
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// =============================================================================
// TRANSACTION-TYPE MAPPER
// =============================================================================

// Target transaction-type vocabulary.
const (
	TxNew          = "New"
	TxRenewal      = "Renewal"
	TxCancellation = "Cancellation"
	TxTermination  = "Termination"
	TxAdjustment   = "Adjustment"
	TxBonus        = "Bonus"
	TxCommission   = "Commission"
	TxReversal     = "Reversal"
	TxCorrection   = "Correction"
	TxOther        = "Other"
)

// txExact maps lower-cased labels to the closed vocabulary.
var txExact = map[string]string{
	"new":          TxNew,
	"renewal":      TxRenewal,
	"renew":        TxRenewal,
	"cancel":       TxCancellation,
	"cancellation": TxCancellation,
	"terminate":    TxTermination,
	"termination":  TxTermination,
	"adjustment":   TxAdjustment,
	"adj":          TxAdjustment,
	"bonus":        TxBonus,
	"commission":   TxCommission,
	"reversal":     TxReversal,
	"correction":   TxCorrection,
}

// txSynonym is the ordered substring table for labels with no exact match.
// More specific synonyms come first so "renewal payment" never matches "new".
var txSynonym = []struct {
	substr string
	target string
}{
	{"cancellation", TxCancellation},
	{"termination", TxTermination},
	{"adjustment", TxAdjustment},
	{"commission", TxCommission},
	{"correction", TxCorrection},
	{"reversal", TxReversal},
	{"renewal", TxRenewal},
	{"terminate", TxTermination},
	{"cancel", TxCancellation},
	{"renew", TxRenewal},
	{"bonus", TxBonus},
	{"adj", TxAdjustment},
	{"new", TxNew},
}

// MapTransactionType maps a free-text label onto the closed vocabulary.
// Lookup is case-insensitive: exact synonym first, then ordered substring
// match. Anything unmatched becomes Other.
func MapTransactionType(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return TxOther
	}
	if target, found := txExact[s]; found {
		return target
	}
	for _, syn := range txSynonym {
		if strings.Contains(s, syn.substr) {
			return syn.target
		}
	}
	return TxOther
}

// =============================================================================
// IDENTIFIER CLEANER
// =============================================================================

// CleanIdentifier trims an identifier and strips all non-alphanumeric
// characters. Used for member and policy identifiers.
func CleanIdentifier(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
