package ws

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Listener delivers raw live update payloads until ctx is done.
type Listener interface {
	Listen(ctx context.Context) (<-chan []byte, error)
}

// Relay forwards live updates from the store to every websocket viewer.
type Relay struct {
	listener Listener
	manager  *Manager
	retry    time.Duration
	logger   *zap.Logger
}

// NewRelay builds relay.
func NewRelay(listener Listener, manager *Manager, logger *zap.Logger) *Relay {
	return &Relay{
		listener: listener,
		manager:  manager,
		retry:    2 * time.Second,
		logger:   logger,
	}
}

// Run relays until ctx is done, resubscribing when the subscription drops.
func (r *Relay) Run(ctx context.Context) error {
	defer r.manager.CloseAll()
	for {
		updates, err := r.listener.Listen(ctx)
		if err != nil {
			r.logger.Warn("live subscription failed", zap.Error(err))
		} else {
			for msg := range updates {
				r.manager.Broadcast(msg)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.retry):
		}
	}
}
