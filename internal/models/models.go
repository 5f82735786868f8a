// Package models defines the shared data types for portfolios, alerts and quotes.
package models

import "strings"

// SharesPerLot is the IDX trading unit: one lot is 100 shares.
const SharesPerLot = 100

// AlertDirection represents the side of a price alert.
type AlertDirection string

const (
	// DirectionAbove triggers when the last price is at or above the target.
	DirectionAbove AlertDirection = "above"
	// DirectionBelow triggers when the last price is at or below the target.
	DirectionBelow AlertDirection = "below"
)

// Valid reports whether the direction is a known value.
func (d AlertDirection) Valid() bool {
	return d == DirectionAbove || d == DirectionBelow
}

// Label returns the user-facing Indonesian label for the direction.
func (d AlertDirection) Label() string {
	if d == DirectionBelow {
		return "dibawah"
	}
	return "diatas"
}

// ParseDirection maps user input ("diatas"/"dibawah", "above"/"below") to a
// direction. ok is false for anything else.
func ParseDirection(s string) (AlertDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diatas", "above":
		return DirectionAbove, true
	case "dibawah", "below":
		return DirectionBelow, true
	}
	return "", false
}

// Position is a single lot purchase in a user's portfolio.
// A user may hold several positions for the same symbol; entries are never merged.
type Position struct {
	Symbol   string  `json:"symbol"`
	Lots     int     `json:"lots"`
	BuyPrice float64 `json:"buy_price"`
}

// Alert is a price alert. At most one alert exists per (user, symbol) pair.
type Alert struct {
	Symbol      string         `json:"symbol"`
	Direction   AlertDirection `json:"direction"`
	TargetPrice float64        `json:"target_price"`
}

// Equal reports field-wise equality. Alert removal after a trigger matches
// exact instances, not every alert for the symbol.
func (a Alert) Equal(b Alert) bool {
	return a.Symbol == b.Symbol && a.Direction == b.Direction && a.TargetPrice == b.TargetPrice
}

// Document is the single persisted blob holding all users' portfolios and alerts.
type Document struct {
	Portfolios map[string][]Position `json:"portfolios"`
	Alerts     map[string][]Alert    `json:"alerts"`
}

// NewDocument returns an empty document with both maps allocated.
func NewDocument() *Document {
	return &Document{
		Portfolios: make(map[string][]Position),
		Alerts:     make(map[string][]Alert),
	}
}

// Normalize allocates missing maps after JSON decoding of a partial document.
func (d *Document) Normalize() {
	if d.Portfolios == nil {
		d.Portfolios = make(map[string][]Position)
	}
	if d.Alerts == nil {
		d.Alerts = make(map[string][]Alert)
	}
}

// AlertSymbols returns the set of distinct symbols referenced by any user's alerts.
func (d *Document) AlertSymbols() map[string]struct{} {
	symbols := make(map[string]struct{})
	for _, alerts := range d.Alerts {
		for _, a := range alerts {
			symbols[a.Symbol] = struct{}{}
		}
	}
	return symbols
}

// Quote is a fresh market snapshot for one symbol. Quotes are transient and
// fetched on every evaluation, never persisted or cached.
type Quote struct {
	Symbol        string
	LastPrice     float64
	PreviousClose float64
	DayHigh       float64
	DayLow        float64
	Volume        int64
	CompanyName   string
}

// Change returns the absolute and percentage move versus the previous close.
func (q *Quote) Change() (abs, pct float64) {
	abs = q.LastPrice - q.PreviousClose
	if q.PreviousClose != 0 {
		pct = abs / q.PreviousClose * 100
	}
	return abs, pct
}

// NormalizeSymbol upper-cases a ticker and strips the exchange suffix.
// Stored symbols never carry the suffix; suffixing is a gateway concern.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(s, ".JK")
}
