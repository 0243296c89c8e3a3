package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo_feed/internal/model"
)

const (
	cmdPhotos    = "photos"
	cmdPhotosAny = "photos_any"

	// maxPhotos is how many photos of one result are posted.
	maxPhotos = 10
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Photo Feed Bot!

Search the public photo feed by tag and get the pictures right here.

Quick start:
1. /photos cats - photos tagged "cats"
2. /photos cats dogs - photos tagged with both
3. /photos_any cats dogs - photos tagged with either

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Search:
/photos [tags] - photos matching all tags
/photos_any [tags] - photos matching any tag
/status - state of the last search

Tags are separated by spaces or commas.
Without tags the most recent public photos are shown.`)
}

func (b *Bot) handlePhotos(ctx context.Context, chatID int64, args string, matchAll bool) {
	st := b.chat(chatID)
	if st.busy() {
		b.reply(chatID, "A search is already running. Please wait for it to finish.")
		return
	}

	tags := ParseTags(args)
	req := b.pipeline.Request(tags)
	req.MatchAll = matchAll

	st.status = model.StatusProcessing
	st.tags = tags
	st.matchAll = matchAll

	b.reply(chatID, fmt.Sprintf("Searching %s...", describeTags(tags)))
	b.pipeline.Search(ctx, req, func(records []model.PhotoRecord, status model.StatusCode) {
		b.handleResult(ctx, chatID, tags, records, status)
	})
}

func (b *Bot) handleResult(ctx context.Context, chatID int64, tags string, records []model.PhotoRecord, status model.StatusCode) {
	if ctx.Err() != nil {
		b.log.Info("search finished after shutdown", "chat_id", chatID, "status", status)
		return
	}

	st := b.chat(chatID)
	st.status = status

	switch status {
	case model.StatusNotInitialized:
		b.reply(chatID, "The photo feed is not configured.")
	case model.StatusOK:
		if len(records) == 0 {
			b.reply(chatID, fmt.Sprintf("No %s found.", describeTags(tags)))
			return
		}
		b.reply(chatID, FormatSummary(tags, len(records)))
		b.sendPhotos(ctx, chatID, records)
	default:
		b.reply(chatID, fmt.Sprintf("Could not load %s. Please try again later.", describeTags(tags)))
	}
}

func (b *Bot) handleAgain(ctx context.Context, chatID int64) {
	st := b.chat(chatID)
	if st.status == model.StatusIdle {
		b.reply(chatID, "No search yet. Use /photos <tags> to start one.")
		return
	}
	b.handlePhotos(ctx, chatID, st.tags, st.matchAll)
}

func (b *Bot) handleStatus(chatID int64) {
	st := b.chat(chatID)
	b.reply(chatID, FormatStatus(st.status, st.tags))
}

// sendPhotos posts up to maxPhotos records and offers to run the search again.
func (b *Bot) sendPhotos(ctx context.Context, chatID int64, records []model.PhotoRecord) {
	shown := records[:min(maxPhotos, len(records))]
	for _, rec := range shown {
		if err := b.limiter.Wait(ctx); err != nil {
			return
		}
		b.sendPhoto(chatID, rec)
	}

	text := "Done."
	if hidden := len(records) - len(shown); hidden > 0 {
		text = fmt.Sprintf("%d more not shown. Add tags to narrow the search.", hidden)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Search again", cbAgain),
		),
	)
	b.send(chatID, msg)
}

// sendPhoto posts rec as a photo, falling back to a text message with the
// link when Telegram rejects the image.
func (b *Bot) sendPhoto(chatID int64, rec model.PhotoRecord) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(rec.LargeURL))
	photo.Caption = FormatCaption(rec)
	if b.send(chatID, photo) {
		return
	}
	b.reply(chatID, FormatRecordText(rec))
}
