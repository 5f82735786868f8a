package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sahamwatch/internal/models"
)

// Property: for any position and quote, the evaluation never divides by zero
// and the P/L identity pnl == marketValue - cost always holds.
func TestProperty_EvaluationNeverFaults(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("P/L identity and zero-cost guard", prop.ForAll(
		func(lots int, buyPrice, lastPrice float64) bool {
			pos := models.Position{Symbol: "TEST", Lots: lots, BuyPrice: buyPrice}
			quote := &models.Quote{Symbol: "TEST", LastPrice: lastPrice}

			report := EvaluatePosition(pos, quote)

			if math.IsNaN(report.PnLPercent) || math.IsInf(report.PnLPercent, 0) {
				return false
			}
			if report.Cost == 0 && report.PnLPercent != 0 {
				return false
			}
			return math.Abs(report.PnL-(report.MarketValue-report.Cost)) < 1e-6
		},
		gen.IntRange(0, 10000),
		gen.Float64Range(0, 100000),
		gen.Float64Range(0, 100000),
	))

	properties.Property("aggregate equals sum of lines", prop.ForAll(
		func(count int, basePrice float64) bool {
			positions := make([]models.Position, count)
			quotes := make(map[string]*models.Quote)
			for i := range positions {
				positions[i] = models.Position{Symbol: "SYM", Lots: i + 1, BuyPrice: basePrice}
			}
			quotes["SYM"] = &models.Quote{Symbol: "SYM", LastPrice: basePrice * 1.1}

			report := EvaluatePortfolio(positions, quotes)

			var cost, value float64
			for _, pr := range report.Positions {
				cost += pr.Cost
				value += pr.MarketValue
			}
			return math.Abs(report.TotalCost-cost) < 1e-6 &&
				math.Abs(report.TotalMarketValue-value) < 1e-6 &&
				math.Abs(report.TotalPnL-(value-cost)) < 1e-6
		},
		gen.IntRange(0, 30),
		gen.Float64Range(100, 10000),
	))

	properties.TestingRun(t)
}
