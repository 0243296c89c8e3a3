// Package bot is the Telegram front end of the photo feed viewer.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"photo_feed/internal/config"
	"photo_feed/internal/fetcher"
	"photo_feed/internal/model"
	"photo_feed/internal/pipeline"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// chatState is the search state of one chat. It is only touched from the
// goroutine running Bot.Run.
type chatState struct {
	status   model.StatusCode
	tags     string
	matchAll bool
}

// busy reports whether the chat's last search has not finished yet.
func (st *chatState) busy() bool {
	return st.status != model.StatusIdle && !st.status.IsTerminal()
}

// Bot is the Telegram bot that runs photo searches and posts the results.
type Bot struct {
	api      telegramAPI
	pipeline *pipeline.Pipeline
	loop     *fetcher.Loop
	cfg      *config.Config
	limiter  *rate.Limiter
	chats    map[int64]*chatState
	log      *slog.Logger
}

// New creates a Bot with the given Telegram token. Search results must be
// dispatched through loop so that they are handled on the Run goroutine.
func New(token string, p *pipeline.Pipeline, loop *fetcher.Loop, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, p, loop, cfg, log), nil
}

func newBot(api telegramAPI, p *pipeline.Pipeline, loop *fetcher.Loop, cfg *config.Config, log *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		pipeline: p,
		loop:     loop,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.SendRate), 1),
		chats:    make(map[int64]*chatState),
		log:      log,
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
// Search completions queued on the loop are handled here too.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.loop.Stop()
			return
		case <-b.loop.Wake():
			b.loop.Drain()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if !b.cfg.IsUserAllowed(update.Message.From.ID) {
		b.reply(update.Message.Chat.ID, "Access denied.")
		return
	}
	b.handleCommand(ctx, update.Message)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	b.send(chatID, msg)
}

func (b *Bot) send(chatID int64, c tgbotapi.Chattable) bool {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
		return false
	}
	return true
}

func (b *Bot) chat(chatID int64) *chatState {
	st, ok := b.chats[chatID]
	if !ok {
		st = &chatState{status: model.StatusIdle}
		b.chats[chatID] = st
	}
	return st
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case cmdPhotos:
		b.handlePhotos(ctx, chatID, args, true)
	case cmdPhotosAny:
		b.handlePhotos(ctx, chatID, args, false)
	case "status":
		b.handleStatus(chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
