// Package bot implements the Telegram command layer.
//
// It translates chat commands into store and evaluator calls. Malformed
// arguments are rejected here with a usage reply; the core packages assume
// well-typed inputs.
package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sahamwatch/internal/models"
	"sahamwatch/internal/notify"
	"sahamwatch/internal/portfolio"
	"sahamwatch/internal/quote"
	"sahamwatch/internal/store"
)

// Bot handles inbound commands over Telegram long polling.
type Bot struct {
	client      *Client
	store       store.DataStore
	gateway     quote.Gateway
	notifier    notify.Notifier
	logger      zerolog.Logger
	pollTimeout time.Duration
}

// New creates a bot.
func New(client *Client, ds store.DataStore, gw quote.Gateway, n notify.Notifier, logger zerolog.Logger, pollTimeout time.Duration) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	return &Bot{
		client:      client,
		store:       ds,
		gateway:     gw,
		notifier:    n,
		logger:      logger,
		pollTimeout: pollTimeout,
	}
}

// Run long-polls for updates and dispatches commands until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn().Err(err).Msg("Polling failed, retrying")
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.handle(ctx, u.Message)
		}
	}
}

// handle dispatches one command message.
func (b *Bot) handle(ctx context.Context, msg *Message) {
	command, args := parseCommand(msg.Text)
	if command == "" {
		return
	}

	userID := msg.UserID()
	logger := b.logger.With().Str("user_id", userID).Str("command", command).Logger()
	logger.Debug().Strs("args", args).Msg("Handling command")

	var reply string
	switch command {
	case "start":
		reply = helpText
	case "cek":
		reply = b.handleCheck(ctx, args)
	case "tambah":
		reply = b.handleAddPosition(userID, args)
	case "portfolio":
		reply = b.handlePortfolio(ctx, userID)
	case "alert":
		reply = b.handleSetAlert(userID, args)
	case "hapus_alert":
		reply = b.handleClearAlert(userID, args)
	default:
		return
	}

	if reply == "" {
		return
	}
	if err := b.notifier.Notify(ctx, userID, reply); err != nil {
		logger.Warn().Err(err).Msg("Reply failed")
	}
}

// parseCommand splits "/cmd@botname arg1 arg2" into the bare command and args.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	command := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return strings.ToLower(command), fields[1:]
}

const helpText = "Selamat datang di Bot Saham!\n\n" +
	"Gunakan perintah berikut:\n" +
	"📈 `/cek [KODE]` - Cek harga saham.\n" +
	"➕ `/tambah [KODE] [LOT] [HARGA]` - Tambah saham ke portfolio.\n" +
	"📒 `/portfolio` - Lihat isi portfolio Anda.\n" +
	"🔔 `/alert [KODE] [diatas/dibawah] [HARGA]` - Pasang notifikasi harga.\n" +
	"🗑️ `/hapus_alert [KODE]` - Hapus notifikasi untuk saham."

func (b *Bot) handleCheck(ctx context.Context, args []string) string {
	if len(args) < 1 {
		return "Format: `/cek [KODE_SAHAM]` (Contoh: /cek BBCA)"
	}
	symbol := models.NormalizeSymbol(args[0])

	q, err := b.gateway.Fetch(ctx, symbol)
	if err != nil {
		return renderQuoteError(symbol, err)
	}
	return renderQuote(symbol, q)
}

func (b *Bot) handleAddPosition(userID string, args []string) string {
	const usage = "Format salah. Gunakan: `/tambah [KODE] [LOT] [HARGA_BELI]`"

	if len(args) < 3 {
		return usage
	}
	symbol := models.NormalizeSymbol(args[0])
	lots, err := strconv.Atoi(args[1])
	if err != nil || lots <= 0 {
		return usage
	}
	buyPrice, err := strconv.ParseFloat(args[2], 64)
	if err != nil || buyPrice <= 0 {
		return usage
	}

	pos := models.Position{Symbol: symbol, Lots: lots, BuyPrice: buyPrice}
	err = b.store.Update(func(doc *models.Document) (bool, error) {
		doc.Portfolios[userID] = append(doc.Portfolios[userID], pos)
		return true, nil
	})
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("Saving position failed")
		return "Gagal menyimpan posisi, coba lagi."
	}
	return renderPositionAdded(pos)
}

func (b *Bot) handlePortfolio(ctx context.Context, userID string) string {
	doc := b.store.Load()
	positions := doc.Portfolios[userID]
	if len(positions) == 0 {
		return "Portfolio Anda masih kosong. Tambahkan saham dengan perintah `/tambah`."
	}

	// Fetch each distinct symbol once; failures degrade that line only.
	quotes := make(map[string]*models.Quote)
	for _, pos := range positions {
		if _, seen := quotes[pos.Symbol]; seen {
			continue
		}
		q, err := b.gateway.Fetch(ctx, pos.Symbol)
		if err != nil {
			b.logger.Debug().Err(err).Str("symbol", pos.Symbol).Msg("Quote unavailable for report")
			quotes[pos.Symbol] = nil
			continue
		}
		quotes[pos.Symbol] = q
	}

	report := portfolio.EvaluatePortfolio(positions, quotes)
	return renderPortfolio(report)
}

func (b *Bot) handleSetAlert(userID string, args []string) string {
	const usage = "Format salah. Gunakan: `/alert [KODE] [diatas/dibawah] [HARGA]`"

	if len(args) < 3 {
		return usage
	}
	symbol := models.NormalizeSymbol(args[0])
	direction, ok := models.ParseDirection(args[1])
	if !ok {
		return usage
	}
	targetPrice, err := strconv.ParseFloat(args[2], 64)
	if err != nil || targetPrice <= 0 {
		return usage
	}

	alert := models.Alert{Symbol: symbol, Direction: direction, TargetPrice: targetPrice}
	err = b.store.Update(func(doc *models.Document) (bool, error) {
		// One alert per (user, symbol): setting a new one replaces the old.
		kept := doc.Alerts[userID][:0]
		for _, a := range doc.Alerts[userID] {
			if a.Symbol != symbol {
				kept = append(kept, a)
			}
		}
		doc.Alerts[userID] = append(kept, alert)
		return true, nil
	})
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("Saving alert failed")
		return "Gagal menyimpan alert, coba lagi."
	}
	return renderAlertSet(alert)
}

func (b *Bot) handleClearAlert(userID string, args []string) string {
	if len(args) < 1 {
		return "Format: `/hapus_alert [KODE_SAHAM]`"
	}
	symbol := models.NormalizeSymbol(args[0])

	removed := false
	err := b.store.Update(func(doc *models.Document) (bool, error) {
		alerts, ok := doc.Alerts[userID]
		if !ok {
			return false, nil
		}
		kept := alerts[:0]
		for _, a := range alerts {
			if a.Symbol != symbol {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(alerts) {
			return false, nil
		}
		removed = true
		if len(kept) == 0 {
			delete(doc.Alerts, userID)
		} else {
			doc.Alerts[userID] = kept
		}
		return true, nil
	})
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("Removing alert failed")
		return "Gagal menghapus alert, coba lagi."
	}

	if removed {
		return "🗑️ Semua alert untuk *" + symbol + "* telah dihapus."
	}
	return "Tidak ada alert aktif untuk *" + symbol + "*."
}
