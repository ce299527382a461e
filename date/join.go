package date

import (
	"iter"
	"slices"
)

// iterate returns an iterator over the union of sorted date slices, in chronological order.
// Each date is yielded once.
func iterate(series ...[]Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		indexes := make([]int, len(series))
		for {
			var (
				m     Date
				found bool
			)
			for i, s := range series {
				if indexes[i] >= len(s) {
					continue
				}
				if on := s[indexes[i]]; !found || on.Before(m) {
					m, found = on, true
				}
			}
			if !found {
				// All series have been consumed.
				return
			}
			for i, s := range series {
				if indexes[i] < len(s) && s[indexes[i]] == m {
					indexes[i]++
				}
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Iterate returns an iterator over all unique, sorted dates from multiple History objects.
func Iterate[T float32 | float64 | string](histories ...*History[T]) iter.Seq[Date] {
	dates := make([][]Date, 0, len(histories))
	for _, h := range histories {
		dates = append(dates, h.days)
	}
	return iterate(dates...)
}

// Intersect returns the sorted dates present in every history.
//
// No history means no dates, and any empty history makes the intersection empty.
func Intersect[T float32 | float64 | string](histories ...*History[T]) []Date {
	if len(histories) == 0 {
		return nil
	}
	common := slices.Clone(histories[0].days)
	for _, h := range histories[1:] {
		kept := common[:0]
		for _, on := range common {
			if _, found := h.search(on); found {
				kept = append(kept, on)
			}
		}
		common = kept
	}
	return common
}
