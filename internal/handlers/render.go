package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/messages"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/router"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/utils"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

const maxButtonLabel = 20

type Reply struct {
	Text     string
	Keyboard *models.InlineKeyboardMarkup
}

var (
	btnMainMenu        = utils.Button{Text: "🏠 Main Menu", CallbackData: router.CbMainMenu}
	btnHelp            = utils.Button{Text: "❓ Help", CallbackData: router.CbHelp}
	btnStatus          = utils.Button{Text: "📊 Status", CallbackData: router.CbViewStatus}
	btnPremium         = utils.Button{Text: "⭐ Get Premium", CallbackData: router.CbPremiumInfo}
	btnChannels        = utils.Button{Text: "📂 Channels", CallbackData: router.CbManageChannels}
	btnAddChannel      = utils.Button{Text: "➕ Add Channel", CallbackData: router.CbAddChannel}
	btnSession         = utils.Button{Text: "🔐 Session", CallbackData: router.CbSessionMenu}
	btnUploadSession   = utils.Button{Text: "📤 Upload Session", CallbackData: router.CbUploadSession}
	btnRemoveSession   = utils.Button{Text: "🗑️ Remove Session", CallbackData: router.CbRemoveSession}
	btnConfirmRemove   = utils.Button{Text: "✅ Yes, Remove", CallbackData: router.CbConfirmRemoveSession}
	btnCheckFrozen     = utils.Button{Text: "❄️ Check Frozen", CallbackData: router.CbCheckFrozen}
	btnFrozenSingle    = utils.Button{Text: "📄 Single Check", CallbackData: router.CbFrozenSingle}
	btnFrozenBulk      = utils.Button{Text: "📁 Bulk Check", CallbackData: router.CbFrozenBulk}
	btnRunFrozen       = utils.Button{Text: "✅ Check Numbers", CallbackData: router.CbCheckBulkFrozen}
	btnWithdraw        = utils.Button{Text: "💰 Withdraw", CallbackData: router.CbProcessWithdraw}
	btnBulkWithdraw    = utils.Button{Text: "✅ Process Numbers", CallbackData: router.CbProcessBulkWithdraw}
	btnStartWithdraw   = utils.Button{Text: "📤 Manual Input", CallbackData: router.CbStartWithdraw}
	btnConfirmWithdraw = utils.Button{Text: "✅ Process All", CallbackData: router.CbConfirmWithdraw}
	btnAdminPanel      = utils.Button{Text: "🔧 Admin Panel", CallbackData: router.CbAdminPanel}
	btnAdminUsers      = utils.Button{Text: "👥 Users", CallbackData: router.CbAdminUsers}
	btnAdminStats      = utils.Button{Text: "📊 Statistics", CallbackData: router.CbAdminStats}
	btnAdminSettings   = utils.Button{Text: "⚙️ Settings", CallbackData: router.CbAdminSettings}
	btnAddPremium      = utils.Button{Text: "➕ Add Premium", CallbackData: router.CbAdminAddPremium}
	btnRemovePremium   = utils.Button{Text: "➖ Remove Premium", CallbackData: router.CbAdminRemovePremium}
	btnRefreshStats    = utils.Button{Text: "🔄 Refresh", CallbackData: router.CbAdminStats}
)

func cancel(to string) utils.Button {
	return utils.Button{Text: "🔙 Cancel", CallbackData: to}
}

func keyboard(rows ...[]utils.Button) *models.InlineKeyboardMarkup {
	kb := utils.Rows(rows...)
	return &kb
}

func row(buttons ...utils.Button) []utils.Button { return buttons }

// Render turns a router result into reply text and buttons.
func Render(res types.Result, firstName string, now time.Time) Reply {
	switch res.Outcome {
	case types.OutcomeRegisterFirst:
		return Reply{messages.RegisterFirst(), keyboard(row(utils.Button{Text: "🚀 Start", CallbackData: router.CbMainMenu}))}
	case types.OutcomeWelcome:
		return Reply{messages.Welcome(firstName, res), mainMenu(res)}
	case types.OutcomeMainMenu:
		return Reply{messages.MainMenu(res), mainMenu(res)}
	case types.OutcomeHelp:
		return Reply{messages.Help(), keyboard(row(btnMainMenu), row(btnPremium))}
	case types.OutcomeStatus:
		return Reply{messages.Status(res), keyboard(row(btnMainMenu), row(btnChannels))}
	case types.OutcomePremiumInfo:
		return Reply{messages.PremiumInfo(res.Premium), keyboard(row(btnMainMenu), row(btnHelp))}
	case types.OutcomeUnknownCommand:
		return Reply{messages.UnknownCommand(), keyboard(row(btnMainMenu, btnHelp))}
	case types.OutcomeNoIntent:
		return Reply{messages.NoIntent(), keyboard(row(btnMainMenu))}

	case types.OutcomeNumbersFound:
		return Reply{messages.NumbersFound(res), numbersActions()}
	case types.OutcomeNumbersDetected:
		return Reply{messages.NumbersDetected(res), numbersActions()}
	case types.OutcomeSessionDetected:
		return Reply{messages.SessionDetected(res.FileName), keyboard(row(btnSession), row(btnMainMenu))}
	case types.OutcomeUnrecognized:
		return Reply{messages.Unrecognized(res.FileName), keyboard(row(btnMainMenu))}

	case types.OutcomeChannelList:
		return Reply{messages.ChannelList(res), channelsKeyboard(res)}
	case types.OutcomeChannelRemoved:
		return Reply{messages.ChannelRemoved(res), channelsKeyboard(res)}
	case types.OutcomeChannelPrompt:
		return Reply{messages.ChannelPrompt(), keyboard(row(cancel(router.CbManageChannels)))}
	case types.OutcomeChannelLimit:
		rows := [][]utils.Button{row(btnChannels), row(btnMainMenu)}
		if !res.Premium {
			rows = append([][]utils.Button{row(btnPremium)}, rows...)
		}
		return Reply{messages.ChannelLimit(res), keyboard(rows...)}
	case types.OutcomeChannelAdded:
		return Reply{messages.ChannelAdded(res.Channel), keyboard(row(btnAddChannel), row(btnChannels), row(btnMainMenu))}

	case types.OutcomeSessionMenu:
		if res.HasSession {
			replace := btnUploadSession
			replace.Text = "🔄 Replace Session"
			return Reply{messages.SessionMenu(res), keyboard(row(replace), row(btnRemoveSession), row(btnMainMenu))}
		}
		return Reply{messages.SessionMenu(res), keyboard(row(btnUploadSession), row(btnMainMenu))}
	case types.OutcomeSessionPrompt:
		return Reply{messages.SessionPrompt(), keyboard(row(cancel(router.CbSessionMenu)))}
	case types.OutcomeSessionStored:
		return Reply{messages.SessionStored(res.FileName), keyboard(row(btnSession), row(btnMainMenu))}
	case types.OutcomeSessionConfirm:
		return Reply{messages.SessionConfirm(res.FileName), keyboard(row(btnConfirmRemove), row(cancel(router.CbSessionMenu)))}
	case types.OutcomeSessionRemoved:
		return Reply{messages.SessionRemoved(), keyboard(row(btnUploadSession), row(btnMainMenu))}
	case types.OutcomeNoSession:
		return Reply{messages.NoSession(), keyboard(row(btnUploadSession), row(btnMainMenu))}

	case types.OutcomeFrozenMenu:
		if res.Total > 0 {
			return Reply{messages.FrozenMenu(res), keyboard(row(btnRunFrozen), row(btnFrozenSingle, btnFrozenBulk), row(btnMainMenu))}
		}
		return Reply{messages.FrozenMenu(res), keyboard(row(btnFrozenSingle, btnFrozenBulk), row(btnMainMenu))}
	case types.OutcomeFrozenPrompt:
		return Reply{messages.FrozenPrompt(res.CheckType), keyboard(row(cancel(router.CbCheckFrozen)))}
	case types.OutcomeBulkLoaded:
		return Reply{messages.BulkLoaded(res), keyboard(row(btnRunFrozen), row(cancel(router.CbMainMenu)))}
	case types.OutcomeFrozenReport:
		return Reply{messages.FrozenReport(res.Frozen), keyboard(row(btnCheckFrozen), row(btnMainMenu))}

	case types.OutcomeWithdrawMenu:
		if res.Total > 0 {
			return Reply{messages.WithdrawMenu(res), keyboard(row(btnBulkWithdraw), row(btnStartWithdraw), row(btnMainMenu))}
		}
		start := btnStartWithdraw
		start.Text = "📤 Start Processing"
		return Reply{messages.WithdrawMenu(res), keyboard(row(start), row(btnMainMenu))}
	case types.OutcomeWithdrawPrompt:
		return Reply{messages.WithdrawPrompt(), keyboard(row(cancel(router.CbMainMenu)))}
	case types.OutcomeWithdrawReady:
		return Reply{messages.WithdrawReady(res), keyboard(row(btnConfirmWithdraw), row(cancel(router.CbMainMenu)))}
	case types.OutcomeWithdrawReport:
		again := btnWithdraw
		again.Text = "💰 Start Again"
		return Reply{messages.WithdrawReport(res.Withdraw), keyboard(row(again), row(btnMainMenu))}

	case types.OutcomeAdminPanel:
		return Reply{messages.AdminPanel(), keyboard(row(btnAdminUsers, btnAdminStats), row(btnAdminSettings), row(btnMainMenu))}
	case types.OutcomeAdminUsers:
		return Reply{messages.AdminUsers(), keyboard(row(btnAddPremium), row(btnRemovePremium), row(btnAdminPanel))}
	case types.OutcomeAdminStats:
		return Reply{messages.AdminStats(res.Stats, now), keyboard(row(btnRefreshStats), row(btnAdminPanel))}
	case types.OutcomeAdminSettings:
		return Reply{messages.AdminSettings(res.Settings), keyboard(row(btnAdminPanel))}
	case types.OutcomeAdminPrompt:
		return Reply{messages.AdminPrompt(res.Premium), keyboard(row(cancel(router.CbAdminUsers)))}
	case types.OutcomePremiumUpdated:
		return Reply{messages.PremiumUpdated(res.TargetUserID, res.Premium), keyboard(row(btnAdminUsers), row(btnAdminPanel))}

	case types.OutcomeError:
		return renderError(res)
	}
	return Reply{messages.ErrorDefault(), keyboard(row(btnMainMenu))}
}

func renderError(res types.Result) Reply {
	text := messages.Error(res.Err)
	switch res.Err {
	case types.ErrNoChannels:
		return Reply{text, keyboard(row(btnAddChannel), row(btnMainMenu))}
	case types.ErrAccessDenied:
		return Reply{text, keyboard(row(btnMainMenu))}
	}
	if res.State != "" && res.State != types.StateIdle {
		return Reply{text, keyboard(row(cancel(router.CbMainMenu)))}
	}
	return Reply{text, keyboard(row(btnMainMenu))}
}

// mainMenu surfaces the next setup step first, then the batch tools once a session
// and channels exist.
func mainMenu(res types.Result) *models.InlineKeyboardMarkup {
	rows := make([][]utils.Button, 0, 5)
	switch {
	case res.HasSession && len(res.Channels) > 0:
		rows = append(rows,
			row(btnCheckFrozen, btnWithdraw),
			row(btnChannels, btnSession),
		)
	case res.HasSession:
		first := btnChannels
		first.Text = "📂 Add Channels First"
		rows = append(rows, row(first), row(btnSession, btnWithdraw))
	default:
		first := btnSession
		first.Text = "🔐 Upload Session First"
		rows = append(rows, row(first), row(btnChannels, btnWithdraw))
	}
	rows = append(rows, row(btnStatus, btnHelp))
	if !res.Premium {
		rows = append(rows, row(btnPremium))
	}
	if res.IsAdmin {
		rows = append(rows, row(btnAdminPanel))
	}
	return keyboard(rows...)
}

func numbersActions() *models.InlineKeyboardMarkup {
	return keyboard(row(btnCheckFrozen, btnWithdraw), row(btnMainMenu))
}

func channelsKeyboard(res types.Result) *models.InlineKeyboardMarkup {
	removals := make([]utils.Button, 0, len(res.Channels))
	for _, ch := range res.Channels {
		removals = append(removals, utils.Button{
			Text:         fmt.Sprintf("🗑️ Remove %s", truncate(ch.Name, maxButtonLabel)),
			CallbackData: router.CbRemoveChannelPrefix + strconv.FormatInt(ch.ID, 10),
		})
	}
	kb := utils.BuildInlineKeyboard(removals, 1)

	tail := make([][]utils.Button, 0, 2)
	if len(res.Channels) < res.Limit {
		tail = append(tail, row(btnAddChannel))
	}
	tail = append(tail, row(btnMainMenu))
	kb.InlineKeyboard = append(kb.InlineKeyboard, utils.Rows(tail...).InlineKeyboard...)
	return &kb
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
