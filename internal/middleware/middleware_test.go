package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/contextkeys"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

func TestBuildEvent(t *testing.T) {
	from := &models.User{ID: 7, Username: "neo", FirstName: "Thomas"}

	tests := []struct {
		name    string
		update  *models.Update
		msgType contextkeys.MessageType
		check   func(t *testing.T, ev types.Event)
	}{
		{
			name:    "text",
			update:  &models.Update{Message: &models.Message{From: from, Text: "+1234567890"}},
			msgType: contextkeys.MessageTypeText,
			check: func(t *testing.T, ev types.Event) {
				assert.Equal(t, types.EventText, ev.Kind)
				assert.Equal(t, "+1234567890", ev.Text)
				assert.Equal(t, "neo", ev.Username)
			},
		},
		{
			name:    "command with payload",
			update:  &models.Update{Message: &models.Message{From: from, Text: "/start ref42"}},
			msgType: contextkeys.MessageTypeCommand,
			check: func(t *testing.T, ev types.Event) {
				assert.Equal(t, types.EventCommand, ev.Kind)
				assert.Equal(t, "/start", ev.Command)
				assert.Equal(t, "ref42", ev.Text)
			},
		},
		{
			name: "document",
			update: &models.Update{Message: &models.Message{From: from, Document: &models.Document{
				FileID:   "abc",
				FileName: "numbers.txt",
			}}},
			msgType: contextkeys.MessageTypeDocument,
			check: func(t *testing.T, ev types.Event) {
				assert.Equal(t, types.EventDocument, ev.Kind)
				assert.Equal(t, "abc", ev.DocumentID)
				assert.Equal(t, "numbers.txt", ev.DocumentName)
				assert.Nil(t, ev.Document)
			},
		},
		{
			name:    "callback",
			update:  &models.Update{CallbackQuery: &models.CallbackQuery{From: *from, Data: "main_menu"}},
			msgType: contextkeys.MessageTypeClickButton,
			check: func(t *testing.T, ev types.Event) {
				assert.Equal(t, types.EventCallback, ev.Kind)
				assert.Equal(t, "main_menu", ev.Callback)
				assert.Equal(t, int64(7), ev.UserID)
			},
		},
		{
			name:    "sticker",
			update:  &models.Update{Message: &models.Message{From: from, Sticker: &models.Sticker{FileID: "x"}}},
			msgType: contextkeys.MessageTypeUnknown,
		},
		{
			name:    "channel post",
			update:  &models.Update{ChannelPost: &models.Message{Text: "hello"}},
			msgType: contextkeys.MessageTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, msgType := BuildEvent(tt.update)
			assert.Equal(t, tt.msgType, msgType)
			if tt.check != nil {
				tt.check(t, ev)
			}
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	m := NewMessageAnalyzer(nil)

	var (
		called bool
		gotCtx context.Context
	)
	chain := m.ResolveChatMiddleware(m.AnalyzeMessageMiddleware(func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
		called = true
		gotCtx = ctx
	}))

	t.Run("callback on a message", func(t *testing.T) {
		called = false
		chain(context.Background(), nil, &models.Update{CallbackQuery: &models.CallbackQuery{
			ID:   "cb1",
			From: models.User{ID: 7},
			Data: "help",
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 55, Chat: models.Chat{ID: 700}},
			},
		}})

		require.True(t, called)
		chat, ok := contextkeys.GetChat(gotCtx)
		require.True(t, ok)
		assert.Equal(t, contextkeys.Chat{ChatID: 700, MessageID: 55, CallbackQueryID: "cb1"}, chat)
		assert.True(t, contextkeys.IsClickButton(gotCtx))
		ev, ok := contextkeys.GetEvent(gotCtx)
		require.True(t, ok)
		assert.Equal(t, "help", ev.Callback)
	})

	t.Run("unknown message keeps chat but no event", func(t *testing.T) {
		called = false
		chain(context.Background(), nil, &models.Update{Message: &models.Message{
			From: &models.User{ID: 7},
			Chat: models.Chat{ID: 700},
		}})

		require.True(t, called)
		_, ok := contextkeys.GetEvent(gotCtx)
		assert.False(t, ok)
		msgType, _ := contextkeys.GetMessageType(gotCtx)
		assert.Equal(t, contextkeys.MessageTypeUnknown, msgType)
	})

	t.Run("update without sender is dropped", func(t *testing.T) {
		called = false
		chain(context.Background(), nil, &models.Update{ChannelPost: &models.Message{Text: "x"}})
		assert.False(t, called)
	})
}
