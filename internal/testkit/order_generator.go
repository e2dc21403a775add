package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names produced by OrderGenerator
const (
	ColumnOrderID     = "order_id"
	ColumnOrderAmount = "order_amount"
	ColumnTotalItems  = "total_items"
)

// OrderGeneratorConfig configures the synthetic order generator
type OrderGeneratorConfig struct {
	OrderCount    int     `json:"order_count"`
	MedianAmount  float64 `json:"median_amount"`   // median of the lognormal body
	AmountSpread  float64 `json:"amount_spread"`   // sigma of log(amount)
	OutlierRate   float64 `json:"outlier_rate"`    // fraction of orders inflated into outliers
	OutlierFactor float64 `json:"outlier_factor"`  // multiplier applied to outlier amounts
	MaxItems      int     `json:"max_items"`       // upper bound of items in a regular order
	Seed          int64   `json:"seed"`
}

// DefaultOrderConfig mirrors a small shop: 5000 orders around $150, with a
// handful of bulk purchases
func DefaultOrderConfig() OrderGeneratorConfig {
	return OrderGeneratorConfig{
		OrderCount:    5000,
		MedianAmount:  150,
		AmountSpread:  0.35,
		OutlierRate:   0.01,
		OutlierFactor: 40,
		MaxItems:      5,
		Seed:          42,
	}
}

// OrderGenerator generates order tables with a known outlier population
type OrderGenerator struct {
	config OrderGeneratorConfig
	rng    *rand.Rand
}

// NewOrderGenerator creates a generator; the same seed always yields the same table
func NewOrderGenerator(config OrderGeneratorConfig) *OrderGenerator {
	return &OrderGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Frame generates the order table
func (g *OrderGenerator) Frame() dataframe.DataFrame {
	n := g.config.OrderCount
	if n < 0 {
		n = 0
	}
	maxItems := g.config.MaxItems
	if maxItems < 1 {
		maxItems = 1
	}

	ids := make([]string, n)
	amounts := make([]float64, n)
	items := make([]int, n)
	mu := math.Log(g.config.MedianAmount)

	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("order_%05d", i+1)
		count := 1 + g.rng.Intn(maxItems)
		amount := math.Exp(mu + g.rng.NormFloat64()*g.config.AmountSpread)

		if g.rng.Float64() < g.config.OutlierRate {
			amount *= g.config.OutlierFactor
			count *= 20
		}

		amounts[i] = math.Round(amount*100) / 100
		items[i] = count
	}

	return dataframe.New(
		series.New(ids, series.String, ColumnOrderID),
		series.New(amounts, series.Float, ColumnOrderAmount),
		series.New(items, series.Int, ColumnTotalItems),
	)
}

// Values builds a single float column named column, handy for table tests
func Values(column string, values ...float64) dataframe.DataFrame {
	return dataframe.New(series.New(values, series.Float, column))
}
