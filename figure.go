package dividends

import (
	"encoding/json"
	"fmt"
	"math"
)

// NotAvailable is how an Unavailable figure is displayed.
const NotAvailable = "N/A"

// Figure is a number that may be unavailable.
//
// An unavailable figure is not zero: a stock that paid no dividend has a
// known yield of 0, a stock without a price has no yield at all.
type Figure struct {
	v  float64
	ok bool
}

// Unavailable is the figure that could not be computed.
var Unavailable = Figure{}

// Known returns an available figure. NaN and infinite values are Unavailable.
func Known(v float64) Figure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return Figure{v: v, ok: true}
}

// FromPtr returns Known(*v) or Unavailable for a nil pointer.
func FromPtr(v *float64) Figure {
	if v == nil {
		return Unavailable
	}
	return Known(*v)
}

// Get returns the value and whether it is available.
func (f Figure) Get() (float64, bool) { return f.v, f.ok }

// Available reports whether the figure has a value.
func (f Figure) Available() bool { return f.ok }

// Or returns the value, or def if unavailable.
func (f Figure) Or(def float64) float64 {
	if !f.ok {
		return def
	}
	return f.v
}

// Percent returns the figure as a percentage, for figures that are fractions.
func (f Figure) Percent() Figure {
	if !f.ok {
		return f
	}
	return Known(f.v * 100)
}

// String formats the value with 2 decimals, or NotAvailable.
func (f Figure) String() string {
	if !f.ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", f.v)
}

// PercentString formats a percentage value like "4.25%", or NotAvailable.
func (f Figure) PercentString() string {
	if !f.ok {
		return NotAvailable
	}
	return Percent(f.v).String()
}

// MarshalJSON encodes unavailable figures as null.
func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.ok {
		return []byte("null"), nil
	}
	return json.Marshal(f.v)
}

// UnmarshalJSON decodes null as Unavailable.
func (f *Figure) UnmarshalJSON(b []byte) error {
	var v *float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FromPtr(v)
	return nil
}
