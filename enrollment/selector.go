package enrollment

import (
	"context"
	"sync/atomic"

	"fstop/apperr"
	"fstop/models"
	"fstop/utils"

	"go.uber.org/zap"
)

// Selector routes store calls to the durable store while it is reachable and
// to the local mirror otherwise. Reachability comes from the last Probe and
// from failures seen on real calls.
type Selector struct {
	durable RecordStore
	local   *MemoryStore
	retry   utils.RetryPolicy
	healthy atomic.Bool
	log     *zap.Logger
}

func NewSelector(durable RecordStore, local *MemoryStore, retry utils.RetryPolicy, log *zap.Logger) *Selector {
	s := &Selector{durable: durable, local: local, retry: retry, log: log}
	s.healthy.Store(durable != nil)
	return s
}

// Probe pings the durable store and records the outcome.
func (s *Selector) Probe(ctx context.Context) error {
	if s.durable == nil {
		return apperr.Msg("enrollment.Selector.Probe", apperr.UpstreamUnavailable, "no durable store configured")
	}
	err := s.durable.Ping(ctx)
	was := s.healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		s.log.Warn("enrollment store unreachable", zap.Error(err), zap.String("source", string(models.SourceLocalFallback)))
	case err == nil && !was:
		s.log.Info("enrollment store reachable again")
	}
	return err
}

// Active reports which store the next call will go to.
func (s *Selector) Active() models.Source {
	if s.healthy.Load() {
		return models.SourcePrimary
	}
	return models.SourceLocalFallback
}

// run executes fn against the durable store with retries, falling back to the
// local mirror when the durable store stays unavailable.
func run[T any](ctx context.Context, s *Selector, op string, fn func(context.Context, RecordStore) (T, error)) (T, models.Source, error) {
	if s.healthy.Load() {
		out, err := utils.Retry(ctx, s.retry, func(ctx context.Context) (T, error) {
			return fn(ctx, s.durable)
		})
		if err == nil || !apperr.Is(err, apperr.UpstreamUnavailable) {
			return out, models.SourcePrimary, err
		}
		s.healthy.Store(false)
		s.log.Warn("enrollment store failed, using local fallback",
			zap.String("op", op), zap.Error(err), zap.String("source", string(models.SourceLocalFallback)))
	}
	out, err := fn(ctx, s.local)
	return out, models.SourceLocalFallback, err
}
