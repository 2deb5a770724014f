package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"xhs-monitor/internal/models"
)

const (
	maxListedComments = 10
	maxCommentRunes   = 120
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramNotifier posts one message per target to a chat.
type TelegramNotifier struct {
	api    messageSender
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, logger), nil
}

func newTelegramNotifier(api messageSender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) NotifyNewComments(ctx context.Context, snap models.PostSnapshot, records []models.FlatRecord) error {
	if len(records) == 0 {
		return nil
	}

	params := &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: n.chatID},
		Text:   FormatMessage(snap, records),
	}

	if _, err := n.api.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("notification sent", zap.String("note_id", snap.NoteID), zap.Int("count", len(records)))
	return nil
}

// FormatMessage renders the notification text, listing at most ten comments.
func FormatMessage(snap models.PostSnapshot, records []models.FlatRecord) string {
	var b strings.Builder

	title := snap.Title
	if title == "" {
		title = snap.NoteID
	}
	fmt.Fprintf(&b, "%d new comments on \"%s\"\n", len(records), title)
	if snap.URL != "" {
		b.WriteString(snap.URL)
		b.WriteString("\n")
	}

	for i, r := range records {
		if i == maxListedComments {
			fmt.Fprintf(&b, "... and %d more\n", len(records)-maxListedComments)
			break
		}
		prefix := "-"
		if r.ParentCommentID != "" {
			prefix = "  ↳"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", prefix, r.CommentAuthor, truncate(r.CommentContent, maxCommentRunes))
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
