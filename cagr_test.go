package dividends

import (
	"testing"

	"github.com/etnz/dividends/date"
	"github.com/stretchr/testify/assert"
)

func TestDividendCAGR(t *testing.T) {
	asOf := D("2025-12-31")
	tests := []struct {
		name  string
		divs  *date.History[float64]
		years int
		want  Figure
	}{
		{
			name:  "doubled over two years",
			divs:  series("2023-06-01", 10, "2024-06-01", 15, "2025-06-01", 20),
			years: 3,
			want:  Known(41.42),
		},
		{
			name:  "yearly totals not single payments",
			divs:  series("2023-03-01", 4, "2023-09-01", 6, "2025-03-01", 12, "2025-09-01", 8),
			years: 3,
			want:  Known(41.42),
		},
		{
			name:  "decline",
			divs:  series("2024-06-01", 2, "2025-06-01", 1),
			years: 3,
			want:  Known(-50),
		},
		{
			name:  "outside window is ignored",
			divs:  series("2019-06-01", 1, "2023-06-01", 10, "2025-06-01", 20),
			years: 3,
			want:  Known(41.42),
		},
		{
			name:  "single year",
			divs:  series("2025-03-01", 1, "2025-09-01", 2),
			years: 3,
			want:  Unavailable,
		},
		{
			name:  "single point",
			divs:  series("2025-03-01", 1),
			years: 3,
			want:  Unavailable,
		},
		{
			name:  "nothing in window",
			divs:  series("2015-03-01", 1, "2016-03-01", 2),
			years: 5,
			want:  Unavailable,
		},
		{
			name:  "zero earliest total",
			divs:  series("2023-03-01", 0, "2025-03-01", 2),
			years: 3,
			want:  Unavailable,
		},
		{
			name:  "no history",
			divs:  nil,
			years: 3,
			want:  Unavailable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DividendCAGR(tc.divs, tc.years, asOf)
			assert.Equal(t, tc.want, got)
		})
	}
}
