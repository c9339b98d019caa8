package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/contextkeys"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/messages"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

// Dispatcher is satisfied by *router.Router.
type Dispatcher interface {
	Handle(ctx context.Context, ev types.Event) types.Result
}

type Handlers struct {
	router Dispatcher
	log    *zap.Logger
	now    func() time.Time
}

func NewHandlers(router Dispatcher, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		router: router,
		log:    log.Named("handlers"),
		now:    time.Now,
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	chat, ok := contextkeys.GetChat(ctx)
	if !ok {
		return
	}
	if chat.CallbackQueryID != "" {
		if err := bh.answerCallback(ctx, b, chat.CallbackQueryID, ""); err != nil {
			bh.log.Debug("answer callback failed", zap.Error(err))
		}
	}

	ev, ok := contextkeys.GetEvent(ctx)
	if !ok {
		bh.send(ctx, b, chat.ChatID, Reply{Text: messages.ErrorUnsupportedMessageType()})
		return
	}

	res := bh.router.Handle(ctx, ev)
	reply := Render(res, ev.FirstName, bh.now())

	if contextkeys.IsClickButton(ctx) && chat.MessageID != 0 {
		if bh.edit(ctx, b, chat, reply) {
			return
		}
	}
	bh.send(ctx, b, chat.ChatID, reply)
}

func (bh *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, reply Reply) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      reply.Text,
		ParseMode: messages.ParseModeHTML,
	}
	if reply.Keyboard != nil {
		params.ReplyMarkup = reply.Keyboard
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		bh.log.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// edit reports whether the originating message was updated in place.
func (bh *Handlers) edit(ctx context.Context, b *bot.Bot, chat contextkeys.Chat, reply Reply) bool {
	params := &bot.EditMessageTextParams{
		ChatID:    chat.ChatID,
		MessageID: chat.MessageID,
		Text:      reply.Text,
		ParseMode: messages.ParseModeHTML,
	}
	if reply.Keyboard != nil {
		params.ReplyMarkup = reply.Keyboard
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		bh.log.Debug("edit message failed, sending new one", zap.Int64("chat_id", chat.ChatID), zap.Error(err))
		return false
	}
	return true
}

func (bh *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) error {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}
