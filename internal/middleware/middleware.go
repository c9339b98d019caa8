package middleware

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/contextkeys"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

type Middlewares struct {
	log *zap.Logger
}

func NewMessageAnalyzer(log *zap.Logger) *Middlewares {
	if log == nil {
		log = zap.NewNop()
	}
	return &Middlewares{log: log.Named("middleware")}
}

// ResolveChatMiddleware drops updates that carry no user or chat and records where
// replies should go.
func (m *Middlewares) ResolveChatMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var (
			userID int64
			chat   contextkeys.Chat
		)

		switch {
		case update.Message != nil && update.Message.From != nil:
			userID = update.Message.From.ID
			chat.ChatID = update.Message.Chat.ID
		case update.CallbackQuery != nil:
			userID = update.CallbackQuery.From.ID
			chat.ChatID, chat.MessageID = getChatFromMaybeInaccessibleMessage(update.CallbackQuery.Message)
			chat.CallbackQueryID = update.CallbackQuery.ID
		default:
			return
		}

		if userID == 0 || chat.ChatID == 0 {
			m.log.Debug("update without user or chat ignored", zap.Int64("update_id", update.ID))
			return
		}

		next(contextkeys.WithChat(ctx, chat), b, update)
	}
}

func getChatFromMaybeInaccessibleMessage(m models.MaybeInaccessibleMessage) (int64, int) {
	if m.Message != nil {
		return m.Message.Chat.ID, m.Message.ID
	}
	if m.InaccessibleMessage != nil {
		return m.InaccessibleMessage.Chat.ID, m.InaccessibleMessage.MessageID
	}
	return 0, 0
}

// AnalyzeMessageMiddleware normalizes the update into a types.Event.
func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		ev, msgType := BuildEvent(update)
		ctx = contextkeys.WithMessageType(ctx, msgType)
		if msgType != contextkeys.MessageTypeUnknown {
			ctx = contextkeys.WithEvent(ctx, ev)
		}

		m.log.Info("update",
			zap.Int64("update_id", update.ID),
			zap.Int64("user_id", ev.UserID),
			zap.String("type", string(msgType)),
			zap.String("file", ev.DocumentName),
		)
		next(ctx, b, update)
	}
}

// BuildEvent maps an update onto the event shape the router consumes.
func BuildEvent(update *models.Update) (types.Event, contextkeys.MessageType) {
	if update == nil {
		return types.Event{}, contextkeys.MessageTypeUnknown
	}

	if cq := update.CallbackQuery; cq != nil {
		ev := types.Event{
			UserID:    cq.From.ID,
			Username:  cq.From.Username,
			FirstName: cq.From.FirstName,
			Kind:      types.EventCallback,
			Callback:  strings.TrimSpace(cq.Data),
		}
		if ev.Callback == "" {
			return ev, contextkeys.MessageTypeUnknown
		}
		return ev, contextkeys.MessageTypeClickButton
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return types.Event{}, contextkeys.MessageTypeUnknown
	}
	ev := types.Event{
		UserID:    msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
	}

	switch {
	case msg.Document != nil:
		ev.Kind = types.EventDocument
		ev.DocumentID = msg.Document.FileID
		ev.DocumentName = msg.Document.FileName
		return ev, contextkeys.MessageTypeDocument
	case strings.HasPrefix(msg.Text, "/"):
		ev.Kind = types.EventCommand
		cmd, rest, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
		ev.Command = cmd
		ev.Text = strings.TrimSpace(rest)
		return ev, contextkeys.MessageTypeCommand
	case strings.TrimSpace(msg.Text) != "":
		ev.Kind = types.EventText
		ev.Text = msg.Text
		return ev, contextkeys.MessageTypeText
	}
	return ev, contextkeys.MessageTypeUnknown
}
