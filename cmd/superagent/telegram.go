package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ariyan3323/my-ai-bot/internal/logutil"
	"github.com/Ariyan3323/my-ai-bot/internal/telegramrun"
)

func newTelegramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot with long polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via %s_TELEGRAM_BOT_TOKEN)", envPrefix)
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			dispatcher, _, err := dispatcherFromViper(logger)
			if err != nil {
				return err
			}

			bot, err := telegramrun.New(token, dispatcher, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return bot.Start(ctx)
		},
	}
	return cmd
}
