package router

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/state"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

const (
	CbMainMenu             = "main_menu"
	CbHelp                 = "help"
	CbViewStatus           = "view_status"
	CbPremiumInfo          = "premium_info"
	CbSessionMenu          = "session_menu"
	CbUploadSession        = "upload_session"
	CbRemoveSession        = "remove_session"
	CbConfirmRemoveSession = "confirm_remove_session"
	CbManageChannels       = "manage_channels"
	CbAddChannel           = "add_channel"
	CbRemoveChannelPrefix  = "remove_channel_"
	CbCheckFrozen          = "check_frozen"
	CbFrozenSingle         = "frozen_single"
	CbFrozenBulk           = "frozen_bulk"
	CbCheckBulkFrozen      = "check_bulk_frozen"
	CbProcessWithdraw      = "process_withdraw"
	CbProcessBulkWithdraw  = "process_bulk_withdraw"
	CbStartWithdraw        = "start_withdraw"
	CbConfirmWithdraw      = "confirm_withdraw"
	CbAdminPrefix          = "admin_"
	CbAdminPanel           = "admin_panel"
	CbAdminUsers           = "admin_users"
	CbAdminStats           = "admin_stats"
	CbAdminSettings        = "admin_settings"
	CbAdminAddPremium      = "admin_add_premium"
	CbAdminRemovePremium   = "admin_remove_premium"
)

func (r *Router) onCallback(q *request) types.Result {
	data := strings.TrimSpace(q.ev.Callback)
	q.log.Info("callback", zap.String("data", data))

	// main_menu doubles as the "start" button shown to users who have not registered yet.
	if data == CbMainMenu {
		if !r.store.IsUserRegistered(q.ctx, q.uid()) &&
			!r.store.RegisterUser(q.ctx, q.uid(), q.ev.Username, q.ev.FirstName) {
			return fail(types.ErrStoreFailure)
		}
		r.states.ClearState(q.uid())
		return r.overview(q, types.OutcomeMainMenu)
	}

	if !r.store.IsUserRegistered(q.ctx, q.uid()) {
		return types.Result{Outcome: types.OutcomeRegisterFirst}
	}

	switch {
	case data == CbHelp:
		return types.Result{Outcome: types.OutcomeHelp}
	case data == CbViewStatus:
		return r.overview(q, types.OutcomeStatus)
	case data == CbPremiumInfo:
		return types.Result{Outcome: types.OutcomePremiumInfo, Premium: r.store.IsPremiumUser(q.ctx, q.uid())}

	case data == CbSessionMenu:
		r.states.SetState(q.uid(), types.StateIdle)
		return r.overview(q, types.OutcomeSessionMenu)
	case data == CbUploadSession:
		r.states.SetState(q.uid(), types.StateSessionUpload)
		return types.Result{Outcome: types.OutcomeSessionPrompt}
	case data == CbRemoveSession:
		sess, ok := r.store.SessionInfo(q.ctx, q.uid())
		if !ok {
			return types.Result{Outcome: types.OutcomeNoSession}
		}
		return types.Result{Outcome: types.OutcomeSessionConfirm, HasSession: true, FileName: sess.Label}
	case data == CbConfirmRemoveSession:
		if !r.store.RemoveSession(q.ctx, q.uid()) {
			return fail(types.ErrStoreFailure)
		}
		q.log.Info("session removed")
		return types.Result{Outcome: types.OutcomeSessionRemoved}

	case data == CbManageChannels:
		r.states.SetState(q.uid(), types.StateIdle)
		return r.showChannels(q, types.OutcomeChannelList)
	case data == CbAddChannel:
		return r.startAddChannel(q)
	case strings.HasPrefix(data, CbRemoveChannelPrefix):
		return r.removeChannel(q, strings.TrimPrefix(data, CbRemoveChannelPrefix))

	case data == CbCheckFrozen:
		return r.loadDetected(q, types.OutcomeFrozenMenu)
	case data == CbFrozenSingle:
		r.states.SetState(q.uid(), types.StateFileUpload, state.Text(state.CheckType, string(types.CheckSingle)))
		return types.Result{Outcome: types.OutcomeFrozenPrompt, CheckType: types.CheckSingle}
	case data == CbFrozenBulk:
		r.states.SetState(q.uid(), types.StateFileUpload, state.Text(state.CheckType, string(types.CheckBulk)))
		return types.Result{Outcome: types.OutcomeFrozenPrompt, CheckType: types.CheckBulk}
	case data == CbCheckBulkFrozen:
		return r.runFrozenCheck(q)

	case data == CbProcessWithdraw:
		return r.loadDetected(q, types.OutcomeWithdrawMenu)
	case data == CbProcessBulkWithdraw:
		return r.startBulkWithdraw(q)
	case data == CbStartWithdraw:
		r.states.SetState(q.uid(), types.StateWithdrawProcessing)
		return types.Result{Outcome: types.OutcomeWithdrawPrompt}
	case data == CbConfirmWithdraw:
		return r.runWithdraw(q)

	case strings.HasPrefix(data, CbAdminPrefix):
		return r.onAdminCallback(q, data)
	}
	return fail(types.ErrUnknownAction)
}

func (r *Router) removeChannel(q *request, rawID string) types.Result {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fail(types.ErrUnknownAction)
	}
	if !r.store.RemoveChannel(q.ctx, q.uid(), id) {
		return fail(types.ErrStoreFailure)
	}
	q.log.Info("channel removed", zap.Int64("channel_id", id))
	return r.showChannels(q, types.OutcomeChannelRemoved)
}

// loadDetected returns the user to idle and, when an earlier upload or message left
// detected numbers behind, stages them for the next batch step.
func (r *Router) loadDetected(q *request, outcome types.Outcome) types.Result {
	r.states.SetState(q.uid(), types.StateIdle)
	res := types.Result{Outcome: outcome}
	nums, ok := r.states.List(q.uid(), state.DetectedNumbers)
	if !ok || len(nums) == 0 {
		return res
	}
	file, _ := r.states.Text(q.uid(), state.DetectedFile)
	r.states.SetList(q.uid(), state.BulkNumbers, nums)
	r.states.SetText(q.uid(), state.SourceFile, file)
	res.Numbers = nums
	res.Total = len(nums)
	res.FileName = file
	return res
}

func (r *Router) runFrozenCheck(q *request) types.Result {
	nums, _ := r.states.List(q.uid(), state.BulkNumbers)
	if len(nums) == 0 {
		return fail(types.ErrNothingToProcess)
	}
	channels := r.store.GetUserChannels(q.ctx, q.uid())
	if len(channels) == 0 {
		return fail(types.ErrNoChannels)
	}
	source, _ := r.states.Text(q.uid(), state.SourceFile)

	report, err := r.frozen.Check(q.ctx, channels, nums)
	if err != nil {
		q.log.Error("frozen check failed", zap.Int("numbers", len(nums)), zap.Error(err))
		return fail(types.ErrProcessingFailed)
	}
	report.Source = source
	r.states.ClearKey(q.uid(), state.BulkNumbers, state.SourceFile, state.DetectedNumbers, state.DetectedFile)
	r.states.SetState(q.uid(), types.StateIdle)
	q.log.Info("frozen check done", zap.Int("total", report.Total), zap.Int("frozen", report.Frozen))
	return types.Result{Outcome: types.OutcomeFrozenReport, Frozen: &report, FileName: source}
}

func (r *Router) startBulkWithdraw(q *request) types.Result {
	nums, _ := r.states.List(q.uid(), state.BulkNumbers)
	if len(nums) == 0 {
		return fail(types.ErrNothingToProcess)
	}
	source, _ := r.states.Text(q.uid(), state.SourceFile)
	r.states.SetState(q.uid(), types.StateWithdrawProcessing, state.List(state.WithdrawNumbers, nums))
	return types.Result{Outcome: types.OutcomeWithdrawReady, Numbers: nums, Total: len(nums), FileName: source}
}

func (r *Router) runWithdraw(q *request) types.Result {
	nums, _ := r.states.List(q.uid(), state.WithdrawNumbers)
	if len(nums) == 0 {
		return fail(types.ErrNothingToProcess)
	}

	req, ok := r.store.CreateWithdrawRequest(q.ctx, q.uid(), nums)
	if !ok {
		return fail(types.ErrStoreFailure)
	}

	report, err := r.withdraw.Process(q.ctx, req)
	if err != nil {
		q.log.Error("withdraw processing failed", zap.Int64("request_id", req.ID), zap.Error(err))
		r.store.FinishWithdrawRequest(q.ctx, req.ID, types.WithdrawFailed)
		r.states.ClearState(q.uid())
		return fail(types.ErrProcessingFailed)
	}
	r.store.FinishWithdrawRequest(q.ctx, req.ID, types.WithdrawProcessed)
	report.RequestID = req.ID
	r.states.ClearState(q.uid())
	q.log.Info("withdraw processed", zap.Int64("request_id", req.ID), zap.Int("processed", report.Processed))
	return types.Result{Outcome: types.OutcomeWithdrawReport, Withdraw: &report}
}

func (r *Router) onAdminCallback(q *request, data string) types.Result {
	if !r.isAdmin(q.uid()) {
		return fail(types.ErrAccessDenied)
	}
	switch data {
	case CbAdminPanel:
		r.states.ClearState(q.uid())
		return types.Result{Outcome: types.OutcomeAdminPanel}
	case CbAdminUsers:
		r.states.ClearState(q.uid())
		return types.Result{Outcome: types.OutcomeAdminUsers}
	case CbAdminStats:
		st, ok := r.store.Stats(q.ctx)
		if !ok {
			return fail(types.ErrStoreFailure)
		}
		return types.Result{Outcome: types.OutcomeAdminStats, Stats: &st}
	case CbAdminSettings:
		return types.Result{Outcome: types.OutcomeAdminSettings, Settings: &types.Settings{
			FreeChannels:    r.limits.FreeChannels,
			PremiumChannels: r.limits.PremiumChannels,
			FrozenCacheTTL:  r.store.FrozenTTL(),
		}}
	case CbAdminAddPremium:
		r.states.SetState(q.uid(), types.StateAdminCommand, state.Text(state.AdminAction, string(types.AdminAddPremium)))
		return types.Result{Outcome: types.OutcomeAdminPrompt, Premium: true}
	case CbAdminRemovePremium:
		r.states.SetState(q.uid(), types.StateAdminCommand, state.Text(state.AdminAction, string(types.AdminRemovePremium)))
		return types.Result{Outcome: types.OutcomeAdminPrompt, Premium: false}
	}
	return fail(types.ErrUnknownAction)
}
