package router

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/extract"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/state"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

var (
	sessionUploadExts  = extSet("session", "zip", "tdata", "json")
	sessionDetectExts  = extSet("session", "tdata", "json")
	numberDetectExts   = extSet("txt", "csv", "zip")
	withdrawUploadExts = extSet("txt", "zip")
	checkUploadExts    = extSet("txt")
)

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

func accepts(set map[string]struct{}, name string) bool {
	_, ok := set[extract.Ext(name)]
	return ok
}

var errNoFetcher = errors.New("no document fetcher configured")

// document returns the upload's bytes, downloading them on first use.
func (r *Router) document(q *request) ([]byte, bool) {
	if q.ev.Document != nil {
		return q.ev.Document, true
	}
	if r.fetcher == nil || q.ev.DocumentID == "" {
		q.log.Error("document fetch failed", zap.String("file", q.ev.DocumentName), zap.Error(errNoFetcher))
		return nil, false
	}
	data, err := r.fetcher.Fetch(q.ctx, q.ev.DocumentID)
	if err != nil {
		q.log.Error("document fetch failed", zap.String("file", q.ev.DocumentName), zap.Error(err))
		return nil, false
	}
	q.ev.Document = data
	return data, true
}

func (r *Router) onDocument(q *request) types.Result {
	if !r.store.IsUserRegistered(q.ctx, q.uid()) {
		return types.Result{Outcome: types.OutcomeRegisterFirst}
	}
	q.log.Info("document received", zap.String("file", q.ev.DocumentName))

	switch r.states.State(q.uid()) {
	case types.StateSessionUpload:
		return r.onSessionFile(q)
	case types.StateFileUpload:
		return r.onNumberFile(q)
	case types.StateWithdrawProcessing:
		if !accepts(withdrawUploadExts, q.ev.DocumentName) {
			return types.Result{Outcome: types.OutcomeUnrecognized, FileName: q.ev.DocumentName}
		}
		return r.onWithdrawFile(q)
	}
	return r.detectFile(q)
}

func (r *Router) onSessionFile(q *request) types.Result {
	name := q.ev.DocumentName
	if !accepts(sessionUploadExts, name) {
		return fail(types.ErrUnsupportedFile)
	}
	data, ok := r.document(q)
	if !ok {
		return fail(types.ErrFetchFailed)
	}

	blob := data
	if extract.Ext(name) == "zip" {
		entry, entryName, err := extract.SessionFromArchive(data)
		if err != nil {
			q.log.Warn("session archive unreadable", zap.String("file", name), zap.Error(err))
		} else if entry != nil {
			q.log.Info("session extracted from archive", zap.String("entry", entryName))
		}
		blob = entry
	}
	if len(blob) == 0 {
		return fail(types.ErrNoSessionData)
	}

	if !r.store.StoreSession(q.ctx, q.uid(), blob, name) {
		return fail(types.ErrStoreFailure)
	}
	r.states.ClearState(q.uid())
	return types.Result{Outcome: types.OutcomeSessionStored, FileName: name}
}

// onNumberFile loads numbers for a frozen check. Only plain text files are taken here.
func (r *Router) onNumberFile(q *request) types.Result {
	name := q.ev.DocumentName
	if !accepts(checkUploadExts, name) {
		return fail(types.ErrUnsupportedFile)
	}
	data, ok := r.document(q)
	if !ok {
		return fail(types.ErrFetchFailed)
	}
	nums := extract.Numbers(extract.DecodeText(data))
	if len(nums) == 0 {
		return fail(types.ErrNoNumbers)
	}
	r.states.SetList(q.uid(), state.BulkNumbers, nums)
	r.states.SetText(q.uid(), state.SourceFile, name)
	ct, _ := r.states.Text(q.uid(), state.CheckType)
	return types.Result{
		Outcome:   types.OutcomeBulkLoaded,
		Numbers:   nums,
		Total:     len(nums),
		FileName:  name,
		CheckType: types.CheckType(ct),
	}
}

// onWithdrawFile adds the file's numbers to those already collected.
func (r *Router) onWithdrawFile(q *request) types.Result {
	data, ok := r.document(q)
	if !ok {
		return fail(types.ErrFetchFailed)
	}
	nums := extract.FromFile(q.ev.DocumentName, data, q.log)
	if len(nums) == 0 {
		return fail(types.ErrNoNumbers)
	}
	existing, _ := r.states.List(q.uid(), state.WithdrawNumbers)
	all := extract.Merge(existing, nums)
	r.states.SetList(q.uid(), state.WithdrawNumbers, all)
	return types.Result{
		Outcome:  types.OutcomeWithdrawReady,
		Numbers:  nums,
		Total:    len(all),
		FileName: q.ev.DocumentName,
	}
}

// detectFile guesses what an upload is for when no flow is waiting for one.
func (r *Router) detectFile(q *request) types.Result {
	name := q.ev.DocumentName
	switch {
	case accepts(sessionDetectExts, name):
		return types.Result{Outcome: types.OutcomeSessionDetected, FileName: name}
	case accepts(numberDetectExts, name):
		data, ok := r.document(q)
		if !ok {
			return fail(types.ErrFetchFailed)
		}
		nums := extract.FromFile(name, data, q.log)
		if len(nums) == 0 {
			return types.Result{Outcome: types.OutcomeUnrecognized, FileName: name}
		}
		r.states.SetList(q.uid(), state.DetectedNumbers, nums)
		r.states.SetText(q.uid(), state.DetectedFile, name)
		return types.Result{Outcome: types.OutcomeNumbersDetected, Numbers: nums, Total: len(nums), FileName: name}
	default:
		return types.Result{Outcome: types.OutcomeUnrecognized, FileName: name}
	}
}
