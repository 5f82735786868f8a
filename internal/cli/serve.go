package cli

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"sahamwatch/internal/bot"
	"sahamwatch/internal/engine"
)

// newServeCmd runs the Telegram bot and the alert engine together.
func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the periodic alert scanner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Config.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			notifier := app.Notifier()

			eng := engine.New(app.Store, app.Gateway, notifier, app.Journal, app.Logger, engine.Options{
				Interval:     app.Config.Scan.Interval(),
				InitialDelay: app.Config.Scan.InitialDelay(),
			})

			client := bot.NewClient(app.Config.Telegram.BotToken, "")
			b := bot.New(client, app.Store, app.Gateway, notifier, app.Logger, app.Config.Telegram.PollTimeout())

			app.Logger.Info().
				Dur("scan_interval", app.Config.Scan.Interval()).
				Msg("Bot with alert scanner running")

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := eng.Run(ctx); err != nil && err != context.Canceled {
					app.Logger.Error().Err(err).Msg("Alert engine stopped")
				}
			}()

			err := b.Run(ctx)
			stop()
			wg.Wait()

			if err == context.Canceled {
				app.Logger.Info().Msg("Shutdown complete")
				return nil
			}
			return err
		},
	}
}
