package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Prober checks whether a backing store is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// StartStoreProbe runs p every interval until the returned cron is stopped.
// The first probe runs immediately.
func StartStoreProbe(p Prober, interval time.Duration, log *zap.Logger) (*cron.Cron, error) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval/2+time.Second)
		defer cancel()
		if err := p.Probe(ctx); err != nil {
			log.Debug("store probe failed", zap.Error(err))
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), run); err != nil {
		return nil, err
	}

	run()
	c.Start()
	log.Info("store probe scheduler started", zap.Duration("interval", interval))
	return c, nil
}
