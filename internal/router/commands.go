package router

import (
	"strings"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

func (r *Router) onCommand(q *request) types.Result {
	cmd := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(q.ev.Command), "/"))
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}

	if cmd == "start" {
		r.states.ClearState(q.uid())
		if !r.store.RegisterUser(q.ctx, q.uid(), q.ev.Username, q.ev.FirstName) {
			return fail(types.ErrStoreFailure)
		}
		return r.overview(q, types.OutcomeWelcome)
	}

	if !r.store.IsUserRegistered(q.ctx, q.uid()) {
		return types.Result{Outcome: types.OutcomeRegisterFirst}
	}

	switch cmd {
	case "help":
		return types.Result{Outcome: types.OutcomeHelp}
	case "status":
		return r.overview(q, types.OutcomeStatus)
	case "cancel", "menu":
		r.states.ClearState(q.uid())
		return r.overview(q, types.OutcomeMainMenu)
	case "admin":
		if !r.isAdmin(q.uid()) {
			return fail(types.ErrAccessDenied)
		}
		r.states.ClearState(q.uid())
		return types.Result{Outcome: types.OutcomeAdminPanel}
	default:
		return types.Result{Outcome: types.OutcomeUnknownCommand}
	}
}
