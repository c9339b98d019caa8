// Package checker holds the stand-in frozen checker and withdraw processor. Neither
// talks to a real telecom backend; both produce deterministic outcomes so the rest of
// the flow can be exercised end to end.
package checker

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BatmanBruc/rtx-toolkit-bot/store"
	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

const defaultWorkers = 4

// Simulated flags every third number of a batch as frozen. Results are cached per
// channel through the store, and a cached verdict wins over a fresh one.
type Simulated struct {
	store   *store.Store
	workers int
	log     *zap.Logger
}

func NewSimulated(s *store.Store, workers int, log *zap.Logger) *Simulated {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulated{store: s, workers: workers, log: log.Named("frozen_checker")}
}

func simulatedFrozen(i int) bool {
	return (i+1)%3 == 0
}

func (c *Simulated) Check(ctx context.Context, channels []types.Channel, numbers []string) (types.FrozenReport, error) {
	var (
		mu     sync.Mutex
		frozen = make(map[string]bool, len(numbers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, ch := range channels {
		g.Go(func() error {
			hits := 0
			for i, phone := range numbers {
				if err := gctx.Err(); err != nil {
					return err
				}
				isFrozen, ok := c.store.GetCachedResult(gctx, ch.ChannelRef, phone)
				if !ok {
					isFrozen = simulatedFrozen(i)
					c.store.CacheFrozenResult(gctx, ch.ChannelRef, phone, isFrozen)
				}
				if isFrozen {
					hits++
					mu.Lock()
					frozen[phone] = true
					mu.Unlock()
				}
			}
			c.log.Debug("channel checked", zap.String("channel", ch.ChannelRef), zap.Int("frozen", hits))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.FrozenReport{}, err
	}

	report := types.FrozenReport{
		Total:           len(numbers),
		ChannelsChecked: len(channels),
		FrozenNumbers:   make([]string, 0, len(frozen)),
	}
	for _, phone := range numbers {
		if frozen[phone] {
			report.FrozenNumbers = append(report.FrozenNumbers, phone)
		}
	}
	report.Frozen = len(report.FrozenNumbers)
	report.Active = report.Total - report.Frozen
	return report, nil
}

// SimulatedWithdraw reports every batch as processed with a fixed number of failures.
type SimulatedWithdraw struct {
	failures int
	log      *zap.Logger
}

func NewSimulatedWithdraw(log *zap.Logger) *SimulatedWithdraw {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimulatedWithdraw{failures: 2, log: log.Named("withdraw_processor")}
}

func (w *SimulatedWithdraw) Process(ctx context.Context, req types.WithdrawRequest) (types.WithdrawReport, error) {
	if err := ctx.Err(); err != nil {
		return types.WithdrawReport{}, err
	}
	n := len(req.PhoneNumbers)
	failed := w.failures
	if failed > n {
		failed = n
	}
	w.log.Debug("withdraw batch", zap.Int64("request_id", req.ID), zap.Int("numbers", n))
	return types.WithdrawReport{
		RequestID:  req.ID,
		Processed:  n,
		Successful: n - failed,
		Failed:     failed,
	}, nil
}
