// Package dividends computes the dividend and performance figures of a
// weighted stock portfolio.
//
// A Portfolio is an immutable set of positions (ticker, weight) whose
// weights sum to one. It is either declared in a configuration file or
// parsed from an uploaded table (see ParseUpload).
//
// For each position a Fetcher provides a quote, a price history and the
// dividend history. From those, Analyze builds a Report:
//   - the trailing twelve months dividend yield of every position, and
//     the portfolio weighted average yield,
//   - the 3 and 5 years dividend growth rate (CAGR),
//   - the base 100 performance of the portfolio against a benchmark index,
//   - the weighted dividend cash flow received by the portfolio,
//   - the sector breakdown and an equal weight rebalancing suggestion.
//
// Missing data is never reported as zero: figures that cannot be computed
// are Unavailable, and positions whose data could not be fetched are
// reported with an error status without stopping the analysis.
//
// This package serves as the foundational logic for the `divs` command-line
// tool and its web dashboard.
package dividends
