package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/match"
)

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"John Smith", "john smith"},
		{"  JOHN   SMITH  ", "john smith"},
		{"Acme Corp.", "acme"},
		{"Acme Corporation", "acme"},
		{"Smith Insurance Group LLC", "smith insurance group"},
		{"Allied, Inc.", "allied"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, match.Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalize_SuffixOnlyMidWordSafe(t *testing.T) {
	// "inc" inside a word must survive; only whole suffix tokens are removed.
	assert.Equal(t, "lincoln brokers", match.Normalize("Lincoln Brokers"))
}

// =============================================================================
// SIMILARITY TESTS
// =============================================================================

func TestSimilar_Layers(t *testing.T) {
	// GIVEN: Name pairs exercising each matching layer
	// WHEN: Compared at the default threshold
	// THEN: Equality, substring, token containment, and ratio all fire

	cases := []struct {
		a, b string
		want bool
	}{
		{"John Smith", "JOHN SMITH", true},         // equal after normalization
		{"Acme Corp", "acme", true},                // suffix + equality
		{"John Smith", "John", true},               // substring
		{"Smith John", "John Smith", true},         // token containment
		{"John A Smith", "John Smith", true},       // token containment (subset)
		{"Jon Smith", "John Smith", true},          // ratio above threshold
		{"John Smith", "Jane Doe", false},          // unrelated
		{"Acme Insurance", "Zenith Health", false}, // unrelated
	}
	for _, tc := range cases {
		got := match.Similar(tc.a, tc.b, match.DefaultThreshold)
		assert.Equal(t, tc.want, got, "%q vs %q", tc.a, tc.b)
	}
}

func TestSimilar_BlankNeverMatches(t *testing.T) {
	assert.False(t, match.Similar("", "", match.DefaultThreshold))
	assert.False(t, match.Similar("", "John Smith", match.DefaultThreshold))
	assert.False(t, match.Similar("   ", "John Smith", match.DefaultThreshold))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, match.Ratio("abc", "abc"))
	assert.Equal(t, 0.0, match.Ratio("abc", "xyz"))
	assert.Equal(t, 1.0, match.Ratio("", ""))

	// "jon smith" vs "john smith": LCS is "jon smith" (9 of 9+10 runes).
	got := match.Ratio("jon smith", "john smith")
	assert.InDelta(t, 2.0*9/19, got, 1e-9)
}

// =============================================================================
// GROUPING TESTS
// =============================================================================

func TestGroup_ClustersSimilarNames(t *testing.T) {
	// GIVEN: Three forms of one agent plus one unrelated name
	// WHEN: Grouped
	// THEN: Two clusters, each keyed by its canonical label

	names := []string{
		"John Smith",
		"JOHN SMITH",
		"John Smith LLC",
		"Jane Doe",
	}

	groups := match.Group(names, match.DefaultThreshold)
	require.Len(t, groups, 2)

	smiths, found := groups["John Smith"]
	require.True(t, found, "canonical label should be the shortest form")
	assert.ElementsMatch(t, []string{"John Smith", "JOHN SMITH", "John Smith LLC"}, smiths)
	assert.Equal(t, []string{"Jane Doe"}, groups["Jane Doe"])
}

func TestGroup_IsOrderDependent(t *testing.T) {
	// GIVEN: A chain A~B and B~C where A and C are not similar
	// WHEN: Grouped with B first vs A first
	// THEN: Cluster shapes differ; greedy grouping never re-evaluates
	//
	// "John" bridges "John Smith" and "John Doe" via substring matching,
	// but the two full names are unrelated to each other.

	require.True(t, match.Similar("John", "John Smith", match.DefaultThreshold))
	require.True(t, match.Similar("John", "John Doe", match.DefaultThreshold))
	require.False(t, match.Similar("John Smith", "John Doe", match.DefaultThreshold))

	bridgeFirst := match.Group([]string{"John", "John Smith", "John Doe"}, match.DefaultThreshold)
	assert.Len(t, bridgeFirst, 1, "seeding on the bridge absorbs both full names")

	edgeFirst := match.Group([]string{"John Smith", "John", "John Doe"}, match.DefaultThreshold)
	assert.Len(t, edgeFirst, 2, "seeding on a full name splits the chain")
}

func TestGroup_EmptyInput(t *testing.T) {
	assert.Empty(t, match.Group(nil, match.DefaultThreshold))
}

// =============================================================================
// CANONICAL LABEL TESTS
// =============================================================================

func TestCanonicalName(t *testing.T) {
	// Fewest tokens wins, then shortest string.
	assert.Equal(t, "John Smith",
		match.CanonicalName([]string{"John Smith Insurance Group", "John Smith", "John A Smith"}))
	assert.Equal(t, "Jo Li",
		match.CanonicalName([]string{"Joe Liu", "Jo Li"}))
	assert.Equal(t, "Solo", match.CanonicalName([]string{"Solo"}))
	assert.Equal(t, "", match.CanonicalName([]string{"", "  "}))
	assert.Equal(t, "Kept", match.CanonicalName([]string{"", "Kept"}))
}

// =============================================================================
// PAIR AUDIT TESTS
// =============================================================================

func TestPairs(t *testing.T) {
	pairs := match.Pairs([]string{"Acme Corp", "acme", "Zenith"}, match.DefaultThreshold)
	require.Len(t, pairs, 1)
	assert.Equal(t, [2]string{"Acme Corp", "acme"}, pairs[0])
}
