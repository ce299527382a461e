package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// LastDays returns the range of n days that ends on 'on'.
//
// LastDays(d, 365) contains d and the 364 days before it.
func LastDays(on Date, n int) Range { return Range{From: on.Add(1 - n), To: on} }

// LastYears returns the range of n years that ends on 'on', both ends included.
func LastYears(on Date, n int) Range { return Range{From: on.AddYears(-n), To: on} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int { return r.To.Sub(r.From) + 1 }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
