// Package router turns normalized inbound events into state transitions, store
// writes and a Result for the rendering layer.
package router

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BatmanBruc/rtx-toolkit-bot/internal/checker"
	"github.com/BatmanBruc/rtx-toolkit-bot/internal/state"
	"github.com/BatmanBruc/rtx-toolkit-bot/store"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

// Fetcher downloads an uploaded document by its transport file id.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

type Limits struct {
	FreeChannels    int
	PremiumChannels int
}

var DefaultLimits = Limits{FreeChannels: 5, PremiumChannels: 100}

type Options struct {
	Store    *store.Store
	States   *state.Machine
	Admins   store.AdminChecker
	Fetcher  Fetcher
	Frozen   types.FrozenChecker
	Withdraw types.WithdrawProcessor
	Limits   Limits
	Logger   *zap.Logger
}

type Router struct {
	store    *store.Store
	states   *state.Machine
	admins   store.AdminChecker
	fetcher  Fetcher
	frozen   types.FrozenChecker
	withdraw types.WithdrawProcessor
	limits   Limits
	log      *zap.Logger
	locks    *userLocks
}

func New(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	limits := opts.Limits
	if limits.FreeChannels <= 0 {
		limits.FreeChannels = DefaultLimits.FreeChannels
	}
	if limits.PremiumChannels <= 0 {
		limits.PremiumChannels = DefaultLimits.PremiumChannels
	}
	states := opts.States
	if states == nil {
		states = state.NewMachine()
	}
	frozen := opts.Frozen
	if frozen == nil {
		frozen = checker.NewSimulated(opts.Store, 0, log)
	}
	withdraw := opts.Withdraw
	if withdraw == nil {
		withdraw = checker.NewSimulatedWithdraw(log)
	}
	return &Router{
		store:    opts.Store,
		states:   states,
		admins:   opts.Admins,
		fetcher:  opts.Fetcher,
		frozen:   frozen,
		withdraw: withdraw,
		limits:   limits,
		log:      log.Named("router"),
		locks:    newUserLocks(),
	}
}

// request carries one event through the handlers.
type request struct {
	ctx context.Context
	ev  types.Event
	log *zap.Logger
}

func (q *request) uid() int64 { return q.ev.UserID }

// Handle processes one event. Events of the same user are serialized.
func (r *Router) Handle(ctx context.Context, ev types.Event) types.Result {
	unlock := r.locks.lock(ev.UserID)
	defer unlock()

	q := &request{
		ctx: ctx,
		ev:  ev,
		log: r.log.With(
			zap.String("trace_id", uuid.NewString()),
			zap.Int64("user_id", ev.UserID),
			zap.String("kind", string(ev.Kind)),
		),
	}
	q.log.Debug("event received", zap.String("state", string(r.states.State(ev.UserID))))

	r.store.TouchUser(ctx, ev.UserID)

	var res types.Result
	switch ev.Kind {
	case types.EventCommand:
		res = r.onCommand(q)
	case types.EventText:
		res = r.onText(q)
	case types.EventDocument:
		res = r.onDocument(q)
	case types.EventCallback:
		res = r.onCallback(q)
	default:
		res = fail(types.ErrUnknownAction)
	}

	res.State = r.states.State(ev.UserID)
	res.IsAdmin = r.isAdmin(ev.UserID)
	if res.Outcome == types.OutcomeError {
		q.log.Info("event rejected", zap.String("error", string(res.Err)), zap.String("state", string(res.State)))
	} else {
		q.log.Debug("event handled", zap.String("outcome", string(res.Outcome)), zap.String("state", string(res.State)))
	}
	return res
}

func (r *Router) isAdmin(userID int64) bool {
	return r.admins != nil && r.admins.IsAdmin(userID)
}

func fail(kind types.ErrorKind) types.Result {
	return types.Result{Outcome: types.OutcomeError, Err: kind}
}

func (r *Router) channelLimit(premium bool) int {
	if premium {
		return r.limits.PremiumChannels
	}
	return r.limits.FreeChannels
}

// overview fills the account summary used by the menu, status and welcome screens.
func (r *Router) overview(q *request, outcome types.Outcome) types.Result {
	premium := r.store.IsPremiumUser(q.ctx, q.uid())
	res := types.Result{
		Outcome:    outcome,
		Premium:    premium,
		HasSession: r.store.HasSession(q.ctx, q.uid()),
		Channels:   r.store.GetUserChannels(q.ctx, q.uid()),
		Limit:      r.channelLimit(premium),
	}
	if sess, ok := r.store.SessionInfo(q.ctx, q.uid()); ok {
		res.FileName = sess.Label
	}
	return res
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks hands out one mutex per user and forgets it once nobody holds it.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
