/*
Package match decides whether two name strings denote the same entity.

PURPOSE:
  The same agent shows up as "John Smith", "JOHN SMITH", or "Smith Insurance
  Group LLC" across carrier statements. This package provides the similarity
  engine used to recognize those as one entity: a normalizer that strips the
  noise, a layered similarity test, and a greedy grouper that partitions a
  name list into clusters with one canonical label each.

MATCHING LAYERS (each short-circuits to true, tried in order):
  1. Normalized forms are equal
  2. One normalized form is a substring of the other
  3. The token set of the shorter name is contained in the longer name's
  4. Longest-common-subsequence similarity ratio >= threshold

KNOWN LIMITATION:
  Group is greedy and first-match-wins: a name joins the first cluster whose
  seed it resembles and is never re-evaluated, so output depends on input
  order. This trades global optimality for determinism and linear passes.

USAGE:
  match.Similar("Acme Corp", "acme", match.DefaultThreshold)  // true
  groups := match.Group(names, 0.85)

SEE ALSO:
  - normalize/pipeline.go: Optional agent-name deduplication stage
*/
package match

import (
	"sort"
	"strings"
)

// DefaultThreshold is the similarity ratio cutoff used when callers have no
// tuned value of their own.
const DefaultThreshold = 0.85

// legal-entity suffixes removed during normalization.
var entitySuffixes = []string{
	"inc",
	"incorporated",
	"corp",
	"corporation",
	"llc",
	"ltd",
	"limited",
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize produces the comparison key for a name: lower-cased, whitespace
// collapsed, punctuation stripped (word characters, spaces, and hyphens
// survive), with legal-entity suffixes removed so "Acme Corp." and "Acme"
// normalize to the same key.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), " ")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	s = b.String()

	// Suffixes are matched wrapped by spaces; padding makes a trailing
	// "acme corp" behave the same as a mid-string one.
	s = " " + s + " "
	for _, suffix := range entitySuffixes {
		s = strings.ReplaceAll(s, " "+suffix+" ", " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// =============================================================================
// SIMILARITY
// =============================================================================

// Similar reports whether two names denote the same entity at the given
// threshold. Two blank names are never similar.
func Similar(a, b string, threshold float64) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	if tokensContained(na, nb) {
		return true
	}
	return Ratio(na, nb) >= threshold
}

// tokensContained reports whether the smaller token set is fully covered by
// the larger one.
func tokensContained(a, b string) bool {
	ta := tokenSet(a)
	tb := tokenSet(b)
	common := 0
	for tok := range ta {
		if tb[tok] {
			common++
		}
	}
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	return common >= smaller
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// Ratio computes a sequence-similarity ratio in [0,1] between two strings:
// twice the length of their longest common subsequence over the sum of their
// lengths. Equal strings score 1, disjoint strings score 0.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	lcs := lcsLength(ra, rb)
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// lcsLength is the classic two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// =============================================================================
// GROUPING
// =============================================================================

// Group partitions names into clusters of names similar to the cluster's
// seed (the first unassigned name, in input order). Each input name lands in
// exactly one cluster and is never re-evaluated once assigned. The map key
// is the cluster's canonical label: the member with the fewest tokens,
// tie-broken by shortest length.
func Group(names []string, threshold float64) map[string][]string {
	groups := make(map[string][]string)
	processed := make(map[string]bool)

	for i, name := range names {
		if processed[name] {
			continue
		}
		processed[name] = true
		cluster := []string{name}

		for _, other := range names[i+1:] {
			if processed[other] {
				continue
			}
			if Similar(name, other, threshold) {
				processed[other] = true
				cluster = append(cluster, other)
			}
		}
		groups[CanonicalName(cluster)] = cluster
	}
	return groups
}

// CanonicalName selects the canonical label for a cluster of similar names:
// fewest whitespace-delimited tokens first, then shortest string. Blank
// members are ignored; an all-blank cluster yields "".
func CanonicalName(names []string) string {
	valid := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			valid = append(valid, n)
		}
	}
	if len(valid) == 0 {
		return ""
	}
	sort.SliceStable(valid, func(i, j int) bool {
		ti, tj := len(strings.Fields(valid[i])), len(strings.Fields(valid[j]))
		if ti != tj {
			return ti < tj
		}
		return len(valid[i]) < len(valid[j])
	})
	return valid[0]
}

// Pairs returns every similar pair in the input, preserving input order of
// discovery. Useful for audit reports on cross-carrier name drift.
func Pairs(names []string, threshold float64) [][2]string {
	var pairs [][2]string
	for i, a := range names {
		for _, b := range names[i+1:] {
			if Similar(a, b, threshold) {
				pairs = append(pairs, [2]string{a, b})
			}
		}
	}
	return pairs
}
