package ports

import "io"

// Distribution is the data needed to draw one column's distribution
type Distribution struct {
	Title  string    // figure title, e.g. "Distribution of Order Amount"
	Label  string    // x-axis label
	Values []float64 // non-missing column values
}

// DistributionRenderer draws a box plot stacked over a density histogram
type DistributionRenderer interface {
	RenderDistribution(w io.Writer, d Distribution) error
}
