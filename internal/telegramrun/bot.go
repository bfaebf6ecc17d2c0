// Package telegramrun polls Telegram for updates and feeds them through
// the dispatcher. It owns nothing but transport concerns: keyboard
// layout, message sending and the long-poll lifecycle.
package telegramrun

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Ariyan3323/my-ai-bot/dispatch"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *dispatch.Dispatcher
	log        *slog.Logger
}

func New(token string, dispatcher *dispatch.Dispatcher, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("bot_authorized", "username", api.Self.UserName)
	return &Bot{api: api, dispatcher: dispatcher, log: log}, nil
}

// Start begins polling updates until ctx is cancelled. Each update runs
// in its own goroutine; the dispatcher serializes turns per user.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.log.Info("polling_start")
	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		msg := update.Message
		go b.handleMessage(ctx, msg)
	}
	return nil
}

// HandleUpdate processes one webhook-delivered update. Shared with the
// HTTP surface so both delivery paths behave identically.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	b.handleMessage(ctx, update.Message)
}

// RegisterWebhook points Telegram at publicURL/webhook for push
// delivery instead of long polling.
func (b *Bot) RegisterWebhook(publicURL string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(publicURL, "/") + "/webhook")
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	b.log.Info("webhook_registered", "url", wh.URL.String())
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	reply := b.dispatcher.Handle(ctx, dispatch.Inbound{
		UserID:  msg.From.ID,
		ChatID:  msg.Chat.ID,
		Text:    msg.Text,
		Channel: dispatch.ChannelTelegram,
	})
	if err := b.send(msg.Chat.ID, reply); err != nil {
		b.log.Error("send_error", "chat_id", msg.Chat.ID, "error", err.Error())
	}
}

func (b *Bot) send(chatID int64, reply dispatch.Reply) error {
	out := tgbotapi.NewMessage(chatID, reply.Text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if reply.ShowMenu {
		out.ReplyMarkup = menuKeyboard()
	}
	_, err := b.api.Send(out)
	return err
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(dispatch.MenuLabels))
	for _, labels := range dispatch.MenuLabels {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}
