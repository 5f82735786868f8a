package bot

import (
	"fmt"
	"strings"

	"sahamwatch/internal/errors"
	"sahamwatch/internal/models"
	"sahamwatch/internal/portfolio"
	"sahamwatch/pkg/utils"
)

// renderQuote formats a /cek reply.
func renderQuote(symbol string, q *models.Quote) string {
	change, changePct := q.Change()
	emoji := "📈"
	if change < 0 {
		emoji = "📉"
	}

	return fmt.Sprintf(
		"%s *%s (%s)*\n\n"+
			"Harga Terakhir: *%s*\n"+
			"Perubahan: *%s (%s)*\n\n"+
			"Tertinggi Hari Ini: %s\n"+
			"Terendah Hari Ini: %s\n"+
			"Volume: %s",
		emoji, q.CompanyName, symbol,
		utils.FormatRupiah(q.LastPrice),
		utils.FormatSignedRupiah(change), utils.FormatPercent(changePct),
		utils.FormatRupiah(q.DayHigh),
		utils.FormatRupiah(q.DayLow),
		utils.FormatVolume(q.Volume),
	)
}

// renderQuoteError formats a /cek failure reply.
func renderQuoteError(symbol string, err error) string {
	if errors.Is(err, errors.ErrQuoteNotFound) {
		return fmt.Sprintf("❌ Kode saham '%s' tidak ditemukan.", symbol)
	}
	return fmt.Sprintf("⚠️ Gagal mengambil harga %s, coba lagi nanti.", symbol)
}

// renderPositionAdded formats a /tambah confirmation.
func renderPositionAdded(pos models.Position) string {
	return fmt.Sprintf("✅ Berhasil ditambahkan: %s %d lot @ %s",
		pos.Symbol, pos.Lots, utils.FormatRupiah(pos.BuyPrice))
}

// renderAlertSet formats an /alert confirmation.
func renderAlertSet(alert models.Alert) string {
	return fmt.Sprintf("🔔 Alert terpasang! Saya akan memberitahu jika %s bergerak %s %s.",
		alert.Symbol, alert.Direction.Label(), utils.FormatRupiah(alert.TargetPrice))
}

// renderPortfolio formats the /portfolio report. Lines with an unavailable
// quote degrade to a note instead of aborting the whole report.
func renderPortfolio(report portfolio.PortfolioReport) string {
	var sb strings.Builder
	sb.WriteString("*📒 Portfolio Anda*\n\n")

	for _, pr := range report.Positions {
		if pr.PriceUnavailable {
			sb.WriteString(fmt.Sprintf("*%s* - %d Lot\nHarga tidak tersedia, memakai modal sebagai nilai.\n\n",
				pr.Position.Symbol, pr.Position.Lots))
			continue
		}

		emoji := "🟢"
		if pr.PnL < 0 {
			emoji = "🔴"
		}
		sb.WriteString(fmt.Sprintf(
			"*%s* - %d Lot\n"+
				"Avg. Beli: %s\n"+
				"Harga Skrg: %s\n"+
				"%s P/L: *%s* (%s)\n\n",
			pr.Position.Symbol, pr.Position.Lots,
			utils.FormatRupiah(pr.Position.BuyPrice),
			utils.FormatRupiah(pr.LastPrice),
			emoji, utils.FormatPercent(pr.PnLPercent), utils.FormatSignedRupiah(pr.PnL),
		))
	}

	totalEmoji := "🔼"
	if report.TotalPnL < 0 {
		totalEmoji = "🔽"
	}
	sb.WriteString("------------------------------\n*Ringkasan Portfolio:*\n")
	sb.WriteString(fmt.Sprintf("Total Modal: %s\n", utils.FormatRupiah(report.TotalCost)))
	sb.WriteString(fmt.Sprintf("Nilai Aset Kini: %s\n", utils.FormatRupiah(report.TotalMarketValue)))
	sb.WriteString(fmt.Sprintf("%s Total P/L: *%s* (%s)",
		totalEmoji, utils.FormatPercent(report.TotalPnLPercent), utils.FormatSignedRupiah(report.TotalPnL)))

	return sb.String()
}
