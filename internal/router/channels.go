package router

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

const MaxChannelNameLen = 100

var (
	ErrChannelFormat      = errors.New("channel input must be \"@handle Name\" or \"-100<id> Name\"")
	ErrChannelNameTooLong = errors.New("channel name too long")

	handleInput = regexp.MustCompile(`^@([a-zA-Z0-9_]+)\s+(.+)$`)
	idInput     = regexp.MustCompile(`^(-100\d{10,})\s+(.+)$`)
)

// ParseChannelInput splits "@handle Name" or "-100<digits> Name" into a channel
// reference and a display name.
func ParseChannelInput(text string) (ref, name string, err error) {
	text = strings.TrimSpace(text)
	if m := handleInput.FindStringSubmatch(text); m != nil {
		ref, name = "@"+m[1], m[2]
	} else if m := idInput.FindStringSubmatch(text); m != nil {
		ref, name = m[1], m[2]
	} else {
		return "", "", ErrChannelFormat
	}
	if utf8.RuneCountInString(name) > MaxChannelNameLen {
		return "", "", ErrChannelNameTooLong
	}
	return ref, name, nil
}

func (r *Router) onChannelInput(q *request) types.Result {
	ref, name, err := ParseChannelInput(q.ev.Text)
	switch {
	case errors.Is(err, ErrChannelNameTooLong):
		return fail(types.ErrNameTooLong)
	case err != nil:
		return fail(types.ErrInvalidFormat)
	}

	for _, ch := range r.store.GetUserChannels(q.ctx, q.uid()) {
		if strings.EqualFold(ch.ChannelRef, ref) {
			return fail(types.ErrDuplicateChannel)
		}
	}

	ch, ok := r.store.AddChannel(q.ctx, q.uid(), ref, name)
	if !ok {
		return fail(types.ErrStoreFailure)
	}
	r.states.ClearState(q.uid())
	q.log.Info("channel added", zap.Int64("channel_id", ch.ID), zap.String("channel", ref))
	return types.Result{Outcome: types.OutcomeChannelAdded, Channel: &ch}
}

func (r *Router) showChannels(q *request, outcome types.Outcome) types.Result {
	premium := r.store.IsPremiumUser(q.ctx, q.uid())
	return types.Result{
		Outcome:  outcome,
		Channels: r.store.GetUserChannels(q.ctx, q.uid()),
		Premium:  premium,
		Limit:    r.channelLimit(premium),
	}
}

func (r *Router) startAddChannel(q *request) types.Result {
	res := r.showChannels(q, types.OutcomeChannelPrompt)
	if len(res.Channels) >= res.Limit {
		res.Outcome = types.OutcomeChannelLimit
		return res
	}
	r.states.SetState(q.uid(), types.StateChannelSetup)
	return res
}
