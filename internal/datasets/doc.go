// Package datasets reads and writes labelled univariate time-series
// collections as CSV files, one case per row with the label in the first
// column.
package datasets
