package main

import (
	"log/slog"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ariyan3323/my-ai-bot/internal/httpapi"
	"github.com/Ariyan3323/my-ai-bot/internal/logutil"
	"github.com/Ariyan3323/my-ai-bot/internal/telegramrun"
	"github.com/Ariyan3323/my-ai-bot/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web chat API, with webhook delivery when a bot token is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			dispatcher, users, err := dispatcherFromViper(logger)
			if err != nil {
				return err
			}

			// Webhook routes are only wired when a bot token is present;
			// otherwise the server is web-chat only.
			var bridge httpapi.TelegramBridge
			if token := strings.TrimSpace(viper.GetString("telegram.bot_token")); token != "" {
				bot, err := telegramrun.New(token, dispatcher, logger)
				if err != nil {
					return err
				}
				bridge = bot
			}

			bind := strings.TrimSpace(viper.GetString("server.bind"))
			if bind == "" {
				bind = "127.0.0.1"
			}
			port := viper.GetInt("server.port")
			if port <= 0 {
				port = 8080
			}

			webTier, _ := store.ParseTier(viper.GetString("server.web_tier"))
			srv := httpapi.NewServer(httpapi.Config{
				Addr:      bind + ":" + strconv.Itoa(port),
				PublicURL: strings.TrimSpace(viper.GetString("server.public_url")),
				Name:      "superagent",
				Version:   version,
				Model:     viper.GetString("model"),
				WebTier:   webTier,
			}, dispatcher, users, bridge, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	return cmd
}
