package session

import (
	"context"
	"fmt"

	"github.com/connectedautocare/console-gateway/pkg/logger"
)

// Listener reacts to the token-expiry signal by forcing logout for the
// affected session. It subscribes for its whole lifetime and detaches
// cleanly on Stop, so restarts never leak subscribers.
type Listener struct {
	mgr    *Manager
	logg   *logger.Logger
	cancel func()
	done   chan struct{}
}

// NewListener builds a listener bound to the manager's expiry signal.
func NewListener(mgr *Manager, logg *logger.Logger) (*Listener, error) {
	if mgr == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &Listener{mgr: mgr, logg: logg}, nil
}

// Start subscribes and begins handling events. Each event triggers exactly
// one logout for its session.
func (l *Listener) Start() {
	ch, cancel := l.mgr.ExpirySignal().Subscribe()
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		for ev := range ch {
			ctx := context.Background()
			if l.logg != nil {
				ctx = l.logg.WithSessionID(ctx, ev.SessionID)
				l.logg.Info(ctx, "session invalidated upstream, forcing logout")
			}
			l.mgr.Logout(ctx, ev.SessionID)
		}
	}()
}

// Stop unsubscribes and waits for in-flight handling to finish.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
}
