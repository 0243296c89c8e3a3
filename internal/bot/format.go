package bot

import (
	"fmt"
	"strings"

	"photo_feed/internal/model"
)

// maxCaptionLen is Telegram's limit for photo captions, in characters.
const maxCaptionLen = 1024

// FormatCaption formats a photo record as a Telegram photo caption.
func FormatCaption(rec model.PhotoRecord) string {
	var b strings.Builder
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(title)
	if rec.Author != "" {
		b.WriteString("\nby ")
		b.WriteString(rec.Author)
	}
	if tags := strings.Fields(rec.Tags); len(tags) > 0 {
		b.WriteString("\n")
		for i, t := range tags {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("#")
			b.WriteString(t)
		}
	}
	return truncate(b.String(), maxCaptionLen)
}

// FormatRecordText formats a photo record as a plain text message.
func FormatRecordText(rec model.PhotoRecord) string {
	return FormatCaption(rec) + "\n\n" + rec.LargeURL
}

// FormatSummary formats the headline sent before the photos of a search.
func FormatSummary(tags string, total int) string {
	noun := "photos"
	if total == 1 {
		noun = "photo"
	}
	if tags == "" {
		return fmt.Sprintf("Found %d recent public %s.", total, noun)
	}
	return fmt.Sprintf("Found %d %s tagged %s.", total, noun, tags)
}

// FormatStatus describes the state of the last search in a chat.
func FormatStatus(status model.StatusCode, tags string) string {
	switch status {
	case model.StatusIdle:
		return "No search yet. Use /photos <tags> to start one."
	case model.StatusProcessing:
		return fmt.Sprintf("Searching %s...", describeTags(tags))
	case model.StatusOK:
		return fmt.Sprintf("Last search: %s, done.", describeTags(tags))
	default:
		return fmt.Sprintf("Last search: %s failed (%s).", describeTags(tags), status)
	}
}

func describeTags(tags string) string {
	if tags == "" {
		return "recent public photos"
	}
	return fmt.Sprintf("photos tagged %s", tags)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
