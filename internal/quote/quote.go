// Package quote wraps the external market-data source behind a small gateway.
package quote

import (
	"context"

	"sahamwatch/internal/models"
)

// Gateway fetches a fresh quote for a symbol.
//
// Ordinary absence ("no trading data today", delisted ticker) is reported as
// errors.ErrQuoteNotFound; hard transport failures come back as a
// *errors.GatewayError. Callers treat both as "skip this item for now".
type Gateway interface {
	Fetch(ctx context.Context, symbol string) (*models.Quote, error)
}
