package syncqueue

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/remote"
)

// Monitor polls the backend and flips the queue between online and offline.
// On the offline-to-online edge it flushes the queue.
type Monitor struct {
	queue       *Queue
	pinger      remote.Pinger
	interval    time.Duration
	pingTimeout time.Duration
}

func NewMonitor(queue *Queue, pinger remote.Pinger, interval time.Duration) *Monitor {
	return &Monitor{
		queue:       queue,
		pinger:      pinger,
		interval:    interval,
		pingTimeout: 3 * time.Second,
	}
}

func (m *Monitor) Run(ctx context.Context) {
	m.check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	online := err == nil
	wasOnline := m.queue.Online()
	m.queue.SetOnline(online)

	switch {
	case online && !wasOnline:
		log.Info().Msg("connection restored, flushing pending operations")
		m.queue.Flush(ctx)
	case !online && wasOnline:
		log.Warn().Err(err).Msg("connection lost, writes will be queued locally")
	}
}
