package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sahamwatch/internal/engine"
	"sahamwatch/internal/errors"
	"sahamwatch/internal/models"
	"sahamwatch/internal/portfolio"
	"sahamwatch/pkg/utils"
)

// newScanCmd runs a single alert engine tick.
func newScanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a single alert scan tick",
		Long: `Run one alert scan immediately and exit.

Without a configured bot token notifications are discarded, which makes this
a dry run over the stored alerts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.New(app.Store, app.Gateway, app.Notifier(), app.Journal, app.Logger, engine.DefaultOptions())
			return eng.Scan(cmd.Context())
		},
	}
}

// newCheckCmd looks up a single quote.
func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check SYMBOL",
		Short: "Look up the current quote for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := models.NormalizeSymbol(args[0])

			q, err := app.Gateway.Fetch(cmd.Context(), symbol)
			if err != nil {
				if errors.Is(err, errors.ErrQuoteNotFound) {
					cmd.Printf("%s: no trading data\n", symbol)
					return nil
				}
				return err
			}

			change, changePct := q.Change()
			cmd.Printf("%s (%s)\n", q.CompanyName, symbol)
			cmd.Printf("  Last:     %s\n", utils.FormatRupiah(q.LastPrice))
			cmd.Printf("  Change:   %s (%s)\n", utils.FormatSignedRupiah(change), utils.FormatPercent(changePct))
			cmd.Printf("  High/Low: %s / %s\n", utils.FormatRupiah(q.DayHigh), utils.FormatRupiah(q.DayLow))
			cmd.Printf("  Volume:   %s\n", utils.FormatVolume(q.Volume))
			return nil
		},
	}
}

// newPortfolioCmd prints the evaluated portfolio for a user.
func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio USER_ID",
		Short: "Show the evaluated portfolio for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			doc := app.Store.Load()
			positions := doc.Portfolios[userID]
			if len(positions) == 0 {
				return errors.Wrapf(errors.ErrUserNotFound, "user %s", userID)
			}

			quotes := make(map[string]*models.Quote)
			for _, pos := range positions {
				if _, seen := quotes[pos.Symbol]; seen {
					continue
				}
				q, err := app.Gateway.Fetch(cmd.Context(), pos.Symbol)
				if err != nil {
					quotes[pos.Symbol] = nil
					continue
				}
				quotes[pos.Symbol] = q
			}

			report := portfolio.EvaluatePortfolio(positions, quotes)
			for _, pr := range report.Positions {
				if pr.PriceUnavailable {
					cmd.Printf("%-8s %4d lot  cost %-16s price unavailable\n",
						pr.Position.Symbol, pr.Position.Lots, utils.FormatRupiah(pr.Cost))
					continue
				}
				cmd.Printf("%-8s %4d lot  cost %-16s now %-16s P/L %s (%s)\n",
					pr.Position.Symbol, pr.Position.Lots,
					utils.FormatRupiah(pr.Cost), utils.FormatRupiah(pr.MarketValue),
					utils.FormatSignedRupiah(pr.PnL), utils.FormatPercent(pr.PnLPercent))
			}
			cmd.Printf("\nTotal: cost %s, value %s, P/L %s (%s)\n",
				utils.FormatRupiah(report.TotalCost),
				utils.FormatRupiah(report.TotalMarketValue),
				utils.FormatSignedRupiah(report.TotalPnL),
				utils.FormatPercent(report.TotalPnLPercent))
			return nil
		},
	}
}

// newHistoryCmd prints the fired-alert journal.
func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [USER_ID]",
		Short: "Show fired alerts from the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Journal == nil {
				return fmt.Errorf("journal is not available")
			}

			userID := ""
			if len(args) == 1 {
				userID = args[0]
			}

			fired, err := app.Journal.History(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			if len(fired) == 0 {
				cmd.Println("No fired alerts recorded.")
				return nil
			}

			for _, f := range fired {
				cmd.Printf("%s  user=%s  %s %s %s  last %s\n",
					f.FiredAt.Format("2006-01-02 15:04:05"),
					f.UserID, f.Symbol, f.Direction.Label(),
					utils.FormatRupiah(f.TargetPrice),
					utils.FormatRupiah(f.LastPrice))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to show")
	return cmd
}
