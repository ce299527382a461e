package dividends

import (
	"math"

	"github.com/etnz/dividends/date"
)

// DividendCAGR returns the compound annual growth rate of the dividends
// paid over the last 'years' years before asOf, in percent rounded to 2
// decimals.
//
// The rate compares the total paid during the earliest calendar year of
// that window with the total paid during the latest one. It is Unavailable
// when the history has less than two dividends, when none was paid within
// the window, when the window covers a single calendar year, or when one of
// the two totals is not positive.
func DividendCAGR(dividends *date.History[float64], years int, asOf date.Date) Figure {
	if dividends == nil || dividends.Len() < 2 || years <= 0 {
		return Unavailable
	}
	window := dividends.Window(date.LastYears(asOf, years))
	if window.Len() == 0 {
		return Unavailable
	}
	first, _ := window.First()
	last, _ := window.Latest()
	ey, ly := first.Year(), last.Year()
	if ey == ly {
		return Unavailable
	}

	var earliest, latest float64
	for on, v := range window.Values() {
		switch on.Year() {
		case ey:
			earliest += v
		case ly:
			latest += v
		}
	}
	if earliest <= 0 || latest <= 0 {
		return Unavailable
	}
	cagr := (math.Pow(latest/earliest, 1/float64(ly-ey)) - 1) * 100
	return Known(math.Round(cagr*100) / 100)
}
