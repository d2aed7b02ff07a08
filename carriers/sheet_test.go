package carriers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodFromFilename(t *testing.T) {
	// GIVEN: Statement filenames in "<Carrier> MM.YYYY Commission.xlsx" form
	// WHEN: The period is extracted
	// THEN: YYYY-MM, with the fallback only for off-convention names

	cases := []struct{ path, want string }{
		{"Centene 06.2024 Commission.xlsx", "2024-06"},
		{"data/Emblem 12.2023 Commission.xlsx", "2023-12"},
		{"/abs/path/Healthfirst 01.2024 Commission.xlsx", "2024-01"},
		{"statement.xlsx", "2024-06"},              // no month.year token
		{"Centene 13.2024 Commission.xlsx", "2024-06"}, // month out of range
		{"Centene June.2024 Commission.xlsx", "2024-06"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, periodFromFilename(tc.path, defaultPeriod), "path %q", tc.path)
	}
}
