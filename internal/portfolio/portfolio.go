// Package portfolio computes per-position and aggregate profit/loss.
//
// Evaluation is pure: quotes are supplied by the caller, so reports can be
// produced (and tested) without touching live market data.
package portfolio

import "sahamwatch/internal/models"

// PositionReport is the evaluated view of a single position.
type PositionReport struct {
	Position         models.Position
	Cost             float64
	MarketValue      float64
	LastPrice        float64
	PnL              float64
	PnLPercent       float64
	PriceUnavailable bool
}

// PortfolioReport aggregates all positions of one user.
// Positions keeps the input order for deterministic display.
type PortfolioReport struct {
	Positions        []PositionReport
	TotalCost        float64
	TotalMarketValue float64
	TotalPnL         float64
	TotalPnLPercent  float64
}

// EvaluatePosition evaluates one position against an optional quote.
// With a nil quote the market value falls back to cost (flat P/L) and the
// report is flagged PriceUnavailable.
func EvaluatePosition(pos models.Position, quote *models.Quote) PositionReport {
	cost := float64(pos.Lots) * models.SharesPerLot * pos.BuyPrice

	report := PositionReport{
		Position: pos,
		Cost:     cost,
	}

	if quote == nil {
		report.MarketValue = cost
		report.PriceUnavailable = true
		return report
	}

	report.LastPrice = quote.LastPrice
	report.MarketValue = float64(pos.Lots) * models.SharesPerLot * quote.LastPrice
	report.PnL = report.MarketValue - cost
	if cost != 0 {
		report.PnLPercent = report.PnL / cost * 100
	}
	return report
}

// EvaluatePortfolio evaluates all positions in input order and aggregates
// cost, market value and P/L. quotes maps symbol to a fresh quote; missing
// entries degrade that line to PriceUnavailable without aborting the report.
func EvaluatePortfolio(positions []models.Position, quotes map[string]*models.Quote) PortfolioReport {
	report := PortfolioReport{
		Positions: make([]PositionReport, 0, len(positions)),
	}

	for _, pos := range positions {
		pr := EvaluatePosition(pos, quotes[pos.Symbol])
		report.Positions = append(report.Positions, pr)
		report.TotalCost += pr.Cost
		report.TotalMarketValue += pr.MarketValue
	}

	report.TotalPnL = report.TotalMarketValue - report.TotalCost
	if report.TotalCost != 0 {
		report.TotalPnLPercent = report.TotalPnL / report.TotalCost * 100
	}
	return report
}
