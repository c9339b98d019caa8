package router

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/extract"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/state"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

// messageSource is recorded as the source name for numbers typed into a message.
const messageSource = "message"

func (r *Router) onText(q *request) types.Result {
	if !r.store.IsUserRegistered(q.ctx, q.uid()) {
		return types.Result{Outcome: types.OutcomeRegisterFirst}
	}

	switch r.states.State(q.uid()) {
	case types.StateChannelSetup:
		return r.onChannelInput(q)
	case types.StateWithdrawProcessing:
		return r.onWithdrawText(q)
	case types.StateAdminCommand:
		return r.onAdminInput(q)
	case types.StateFileUpload:
		if ct, _ := r.states.Text(q.uid(), state.CheckType); ct == string(types.CheckSingle) {
			return r.onSingleCheckText(q)
		}
	}
	return r.onIdleText(q)
}

func (r *Router) onIdleText(q *request) types.Result {
	nums := extract.Numbers(q.ev.Text)
	if len(nums) == 0 {
		return types.Result{Outcome: types.OutcomeNoIntent}
	}
	r.states.SetList(q.uid(), state.DetectedNumbers, nums)
	r.states.SetText(q.uid(), state.DetectedFile, messageSource)
	return types.Result{Outcome: types.OutcomeNumbersFound, Numbers: nums, Total: len(nums)}
}

func (r *Router) onSingleCheckText(q *request) types.Result {
	nums := extract.Numbers(q.ev.Text)
	if len(nums) == 0 {
		return fail(types.ErrNoNumbers)
	}
	r.states.SetList(q.uid(), state.BulkNumbers, nums)
	r.states.SetText(q.uid(), state.SourceFile, messageSource)
	return types.Result{
		Outcome:   types.OutcomeBulkLoaded,
		Numbers:   nums,
		Total:     len(nums),
		FileName:  messageSource,
		CheckType: types.CheckSingle,
	}
}

// onWithdrawText replaces any numbers collected so far with the ones in the message.
func (r *Router) onWithdrawText(q *request) types.Result {
	nums := extract.Numbers(q.ev.Text)
	if len(nums) == 0 {
		return fail(types.ErrNoNumbers)
	}
	r.states.SetList(q.uid(), state.WithdrawNumbers, nums)
	return types.Result{Outcome: types.OutcomeWithdrawReady, Numbers: nums, Total: len(nums)}
}

func (r *Router) onAdminInput(q *request) types.Result {
	if !r.isAdmin(q.uid()) {
		r.states.ClearState(q.uid())
		return fail(types.ErrAccessDenied)
	}

	action, _ := r.states.Text(q.uid(), state.AdminAction)
	var premium bool
	switch types.AdminAction(action) {
	case types.AdminAddPremium:
		premium = true
	case types.AdminRemovePremium:
		premium = false
	default:
		r.states.ClearState(q.uid())
		return fail(types.ErrUnknownAction)
	}

	target, err := strconv.ParseInt(strings.TrimSpace(q.ev.Text), 10, 64)
	if err != nil {
		return fail(types.ErrInvalidUserID)
	}

	// a mistyped id keeps the prompt open
	if !r.store.IsUserRegistered(q.ctx, target) {
		res := fail(types.ErrUnknownUser)
		res.TargetUserID = target
		res.Premium = premium
		return res
	}

	ok := r.store.SetPremiumStatus(q.ctx, target, premium)
	r.states.ClearState(q.uid())
	if !ok {
		res := fail(types.ErrStoreFailure)
		res.TargetUserID = target
		res.Premium = premium
		return res
	}
	q.log.Info("premium updated", zap.Int64("target_user_id", target), zap.Bool("premium", premium))
	return types.Result{Outcome: types.OutcomePremiumUpdated, TargetUserID: target, Premium: premium}
}
