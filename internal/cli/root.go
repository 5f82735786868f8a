// Package cli provides the command-line interface for the bot.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sahamwatch/internal/config"
	"sahamwatch/internal/logging"
	"sahamwatch/internal/notify"
	"sahamwatch/internal/quote"
	"sahamwatch/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Gateway quote.Gateway
	Journal *store.Journal
}

// Notifier returns the configured notification sink: Telegram when a token
// is present, a no-op otherwise (useful for dry scans in development).
func (app *App) Notifier() notify.Notifier {
	if app.Config.Telegram.BotToken == "" {
		return notify.NewNoOpNotifier()
	}
	return notify.NewTelegramNotifier(app.Config.Telegram.BotToken, "")
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Store = store.NewFileStore(cfg.Storage.DataFile, logger)
	app.Gateway = quote.NewYahooGateway(cfg.Market.BaseURL, cfg.Market.Suffix)

	if cfg.Storage.JournalFile != "" {
		journal, err := store.OpenJournal(cfg.Storage.JournalFile)
		if err != nil {
			logger.Warn().Err(err).Msg("Journal unavailable, alert history disabled")
		} else {
			app.Journal = journal
		}
	}

	rootCmd := &cobra.Command{
		Use:   "sahamwatch",
		Short: "IDX portfolio and price-alert Telegram bot",
		Long: `Sahamwatch tracks IDX equity positions and price alerts for Telegram users.

A background engine scans stored alerts against live quotes on a fixed
interval and notifies users when thresholds are crossed.

Use 'sahamwatch serve' to run the bot, or the subcommands for one-off checks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/sahamwatch)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newCheckCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("sahamwatch v%s\n", Version)
		},
	}
}
