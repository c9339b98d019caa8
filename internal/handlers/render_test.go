package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/router"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

var now = time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)

func callbacks(kb *models.InlineKeyboardMarkup) []string {
	var out []string
	if kb == nil {
		return out
	}
	for _, r := range kb.InlineKeyboard {
		for _, b := range r {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

func knownCallback(data string) bool {
	switch data {
	case router.CbMainMenu, router.CbHelp, router.CbViewStatus, router.CbPremiumInfo,
		router.CbSessionMenu, router.CbUploadSession, router.CbRemoveSession, router.CbConfirmRemoveSession,
		router.CbManageChannels, router.CbAddChannel, router.CbCheckFrozen, router.CbFrozenSingle,
		router.CbFrozenBulk, router.CbCheckBulkFrozen, router.CbProcessWithdraw, router.CbProcessBulkWithdraw,
		router.CbStartWithdraw, router.CbConfirmWithdraw, router.CbAdminPanel, router.CbAdminUsers,
		router.CbAdminStats, router.CbAdminSettings, router.CbAdminAddPremium, router.CbAdminRemovePremium:
		return true
	}
	return strings.HasPrefix(data, router.CbRemoveChannelPrefix)
}

func TestRender_EveryOutcome(t *testing.T) {
	outcomes := []types.Outcome{
		types.OutcomeRegisterFirst, types.OutcomeWelcome, types.OutcomeMainMenu, types.OutcomeHelp,
		types.OutcomeStatus, types.OutcomePremiumInfo, types.OutcomeUnknownCommand, types.OutcomeNumbersFound,
		types.OutcomeNoIntent, types.OutcomeChannelList, types.OutcomeChannelPrompt, types.OutcomeChannelLimit,
		types.OutcomeChannelAdded, types.OutcomeChannelRemoved, types.OutcomeSessionMenu, types.OutcomeSessionPrompt,
		types.OutcomeSessionStored, types.OutcomeSessionConfirm, types.OutcomeSessionRemoved, types.OutcomeNoSession,
		types.OutcomeSessionDetected, types.OutcomeFrozenMenu, types.OutcomeFrozenPrompt, types.OutcomeBulkLoaded,
		types.OutcomeFrozenReport, types.OutcomeNumbersDetected, types.OutcomeUnrecognized, types.OutcomeWithdrawMenu,
		types.OutcomeWithdrawPrompt, types.OutcomeWithdrawReady, types.OutcomeWithdrawReport, types.OutcomeAdminPanel,
		types.OutcomeAdminUsers, types.OutcomeAdminStats, types.OutcomeAdminSettings, types.OutcomeAdminPrompt, types.OutcomePremiumUpdated,
		types.OutcomeError,
	}

	for _, o := range outcomes {
		t.Run(string(o), func(t *testing.T) {
			reply := Render(types.Result{Outcome: o, Limit: 5}, "Ann", now)
			assert.NotEmpty(t, reply.Text)
			require.NotNil(t, reply.Keyboard)
			for _, data := range callbacks(reply.Keyboard) {
				assert.True(t, knownCallback(data), "unknown callback %q", data)
				assert.LessOrEqual(t, len(data), 64)
			}
		})
	}
}

func TestRender_MainMenu(t *testing.T) {
	ready := types.Result{
		Outcome:    types.OutcomeMainMenu,
		HasSession: true,
		Channels:   []types.Channel{{ID: 1, Name: "News"}},
		Limit:      5,
	}

	data := callbacks(Render(ready, "", now).Keyboard)
	assert.Contains(t, data, router.CbCheckFrozen)
	assert.Contains(t, data, router.CbPremiumInfo)
	assert.NotContains(t, data, router.CbAdminPanel)

	ready.IsAdmin = true
	ready.Premium = true
	data = callbacks(Render(ready, "", now).Keyboard)
	assert.Contains(t, data, router.CbAdminPanel)
	assert.NotContains(t, data, router.CbPremiumInfo)

	fresh := Render(types.Result{Outcome: types.OutcomeMainMenu, Limit: 5}, "", now)
	assert.Equal(t, "🔐 Upload Session First", fresh.Keyboard.InlineKeyboard[0][0].Text)
}

func TestRender_ChannelList(t *testing.T) {
	res := types.Result{
		Outcome: types.OutcomeChannelList,
		Channels: []types.Channel{
			{ID: 3, Name: "<b>News</b>", ChannelRef: "@news"},
			{ID: 9, Name: "A channel with a really long display name", ChannelRef: "-1001"},
		},
		Limit: 2,
	}
	reply := Render(res, "", now)

	assert.Contains(t, reply.Text, "&lt;b&gt;News&lt;/b&gt;")
	data := callbacks(reply.Keyboard)
	assert.Equal(t, []string{"remove_channel_3", "remove_channel_9", router.CbMainMenu}, data)
	assert.Equal(t, "🗑️ Remove A channel with a rea…", reply.Keyboard.InlineKeyboard[1][0].Text)
}

func TestRender_ErrorOffersWayBack(t *testing.T) {
	reply := Render(types.Result{Outcome: types.OutcomeError, Err: types.ErrInvalidFormat, State: types.StateChannelSetup}, "", now)
	assert.Contains(t, reply.Text, "Invalid format")
	assert.Equal(t, []string{router.CbMainMenu}, callbacks(reply.Keyboard))
	assert.Equal(t, "🔙 Cancel", reply.Keyboard.InlineKeyboard[0][0].Text)

	reply = Render(types.Result{Outcome: types.OutcomeError, Err: types.ErrNoChannels}, "", now)
	assert.Equal(t, []string{router.CbAddChannel, router.CbMainMenu}, callbacks(reply.Keyboard))
}

func TestRender_Reports(t *testing.T) {
	frozen := Render(types.Result{Outcome: types.OutcomeFrozenReport, Frozen: &types.FrozenReport{
		Source: "a.txt", Total: 3, Frozen: 1, Active: 2, ChannelsChecked: 1, FrozenNumbers: []string{"1234567890"},
	}}, "", now)
	assert.Contains(t, frozen.Text, "Frozen: 1")
	assert.Contains(t, frozen.Text, "<code>1234567890</code>")
	assert.Contains(t, frozen.Text, "a.txt")

	withdraw := Render(types.Result{Outcome: types.OutcomeWithdrawReport, Withdraw: &types.WithdrawReport{
		RequestID: 12, Processed: 5, Successful: 3, Failed: 2,
	}}, "", now)
	assert.Contains(t, withdraw.Text, "Request #12")
	assert.Contains(t, withdraw.Text, "Failed: 2")

	settings := Render(types.Result{Outcome: types.OutcomeAdminSettings, Settings: &types.Settings{
		FreeChannels: 5, PremiumChannels: 100, FrozenCacheTTL: time.Hour,
	}}, "", now)
	assert.Contains(t, settings.Text, "Free channel limit: 5")
	assert.Contains(t, settings.Text, "Frozen cache: 1h0m0s")

	stats := Render(types.Result{Outcome: types.OutcomeAdminStats, Stats: &types.Stats{Users: 4}}, "", now)
	assert.Contains(t, stats.Text, "Users: 4")
	assert.Contains(t, stats.Text, "2026-01-02 15:04 UTC")
}
