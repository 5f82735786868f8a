// Package engine implements the periodic alert scanner.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"sahamwatch/internal/errors"
	"sahamwatch/internal/logging"
	"sahamwatch/internal/models"
	"sahamwatch/internal/notify"
	"sahamwatch/internal/quote"
	"sahamwatch/internal/store"
	"sahamwatch/pkg/utils"
)

// Options configures the engine's scheduling policy.
type Options struct {
	Interval     time.Duration // time between scans
	InitialDelay time.Duration // warm-up before the first scan
}

// DefaultOptions returns the default scheduling policy: first scan after a
// 10 second warm-up, then every 5 minutes.
func DefaultOptions() Options {
	return Options{
		Interval:     300 * time.Second,
		InitialDelay: 10 * time.Second,
	}
}

// Engine scans all users' alerts against fresh quotes on a fixed interval,
// notifies on triggers and removes each fired alert exactly once.
type Engine struct {
	store    store.DataStore
	gateway  quote.Gateway
	notifier notify.Notifier
	journal  *store.Journal // optional fire log
	logger   zerolog.Logger
	opts     Options
}

// New creates an alert engine. journal may be nil.
func New(ds store.DataStore, gw quote.Gateway, n notify.Notifier, journal *store.Journal, logger zerolog.Logger, opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultOptions().Interval
	}
	return &Engine{
		store:    ds,
		gateway:  gw,
		notifier: n,
		journal:  journal,
		logger:   logger,
		opts:     opts,
	}
}

// Run blocks, scanning on the configured interval until ctx is cancelled.
// A scan that has already started runs to completion; cancellation is only
// observed between scans.
func (e *Engine) Run(ctx context.Context) error {
	select {
	case <-time.After(e.opts.InitialDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	for {
		if err := e.Scan(ctx); err != nil {
			e.logger.Error().Err(err).Msg("Alert scan failed")
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// marked identifies one alert instance scheduled for removal.
type marked struct {
	userID string
	alert  models.Alert
}

// Scan performs one tick: load the document, evaluate every alert against a
// fresh quote, notify triggered ones, then remove the notified alerts in a
// second pass and save once.
func (e *Engine) Scan(ctx context.Context) error {
	e.logger.Debug().Msg("Starting alert scan")

	doc := e.store.Load()

	// No alerts anywhere: skip the tick without a single quote call.
	if len(doc.AlertSymbols()) == 0 {
		e.logger.Debug().Msg("No active alerts, scan skipped")
		return nil
	}

	// Deterministic user order; alerts keep their list order.
	userIDs := make([]string, 0, len(doc.Alerts))
	for userID := range doc.Alerts {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var fired []marked
	for _, userID := range userIDs {
		for _, alert := range doc.Alerts[userID] {
			if e.evaluate(ctx, userID, alert) {
				fired = append(fired, marked{userID: userID, alert: alert})
			}
		}
	}

	if len(fired) == 0 {
		e.logger.Debug().Msg("Alert scan complete, nothing triggered")
		return nil
	}

	// Removal happens against a fresh load under the store's lock so a
	// command-layer write that landed mid-scan is not clobbered. Only the
	// exact instances that were notified are removed.
	err := e.store.Update(func(d *models.Document) (bool, error) {
		changed := false
		for _, m := range fired {
			if removeAlert(d, m.userID, m.alert) {
				changed = true
			}
		}
		return changed, nil
	})
	if err != nil {
		return errors.Wrap(err, "removing fired alerts")
	}

	e.logger.Info().Int("fired", len(fired)).Msg("Alert scan complete")
	return nil
}

// evaluate checks a single alert and reports whether it fired and was
// successfully notified. Quote failures and dispatch failures leave the
// alert in place for the next tick.
func (e *Engine) evaluate(ctx context.Context, userID string, alert models.Alert) bool {
	logger := logging.WithSymbol(e.logger, alert.Symbol)

	q, err := e.gateway.Fetch(ctx, alert.Symbol)
	if err != nil {
		if errors.Is(err, errors.ErrQuoteNotFound) {
			logger.Debug().Msg("No quote for alert symbol, skipping this tick")
		} else {
			logger.Warn().Err(err).Msg("Quote fetch failed, alert kept for next tick")
		}
		return false
	}

	if !Triggered(alert, q.LastPrice) {
		return false
	}

	text := triggerMessage(alert, q.LastPrice)
	if err := e.notifier.Notify(ctx, userID, text); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Alert notification failed, alert kept for next tick")
		return false
	}

	logging.LogAlertFired(e.logger, userID, alert.Symbol, string(alert.Direction), alert.TargetPrice, q.LastPrice)

	if e.journal != nil {
		if err := e.journal.Record(ctx, userID, alert, q.LastPrice); err != nil {
			// The journal is best-effort; removal must not be blocked.
			logger.Warn().Err(err).Msg("Journal write failed")
		}
	}
	return true
}

// Triggered reports whether the quote satisfies the alert condition.
// Both bounds are inclusive: a price exactly on the target fires.
func Triggered(alert models.Alert, lastPrice float64) bool {
	switch alert.Direction {
	case models.DirectionAbove:
		return lastPrice >= alert.TargetPrice
	case models.DirectionBelow:
		return lastPrice <= alert.TargetPrice
	default:
		return false
	}
}

// triggerMessage renders the notification text for a fired alert.
func triggerMessage(alert models.Alert, lastPrice float64) string {
	return fmt.Sprintf(
		"🔔 *ALERT HARGA* 🔔\nSaham *%s* telah mencapai target Anda (%s %s).\n\nHarga saat ini: *%s*",
		alert.Symbol,
		alert.Direction.Label(),
		utils.FormatRupiah(alert.TargetPrice),
		utils.FormatRupiah(lastPrice),
	)
}

// removeAlert deletes the first exact match of target from the user's alert
// list. It reports whether anything was removed.
func removeAlert(doc *models.Document, userID string, target models.Alert) bool {
	alerts := doc.Alerts[userID]
	for i, a := range alerts {
		if a.Equal(target) {
			doc.Alerts[userID] = append(alerts[:i], alerts[i+1:]...)
			if len(doc.Alerts[userID]) == 0 {
				delete(doc.Alerts, userID)
			}
			return true
		}
	}
	return false
}
