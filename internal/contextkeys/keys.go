package contextkeys

import (
	"context"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

type messageTypeKey struct{}
type eventKey struct{}
type chatKey struct{}

type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeDocument    MessageType = "document"
	MessageTypeCommand     MessageType = "command"
	MessageTypeClickButton MessageType = "clickButton"
	MessageTypeUnknown     MessageType = "unknown"
)

// Chat identifies where a reply goes. MessageID is set for button clicks so the
// originating message can be edited in place.
type Chat struct {
	ChatID          int64
	MessageID       int
	CallbackQueryID string
}

func WithMessageType(ctx context.Context, msgType MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, msgType)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v := ctx.Value(messageTypeKey{})
	if v == nil {
		return MessageTypeUnknown, false
	}
	return v.(MessageType), true
}

func WithEvent(ctx context.Context, ev types.Event) context.Context {
	return context.WithValue(ctx, eventKey{}, ev)
}

func GetEvent(ctx context.Context) (types.Event, bool) {
	v, ok := ctx.Value(eventKey{}).(types.Event)
	return v, ok
}

func WithChat(ctx context.Context, chat Chat) context.Context {
	return context.WithValue(ctx, chatKey{}, chat)
}

func GetChat(ctx context.Context) (Chat, bool) {
	v, ok := ctx.Value(chatKey{}).(Chat)
	return v, ok
}

func IsClickButton(ctx context.Context) bool {
	msgType, ok := GetMessageType(ctx)
	return ok && msgType == MessageTypeClickButton
}
