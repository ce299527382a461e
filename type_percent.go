package dividends

import "fmt"

// Percent is a percentage, 12.5 means 12.5%.
type Percent float64

// Ratio converts a fraction into a Percent.
func Ratio(r float64) Percent { return Percent(r * 100) }

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
