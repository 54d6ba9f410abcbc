package host

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Local runs the handler in-process. This is the default when the viewer is
// opened directly on a deck directory: intents still go through the same
// send/ack cycle, so timeouts and optimistic updates behave the same as over
// the wire.
type Local struct {
	h      *Handler
	log    *zap.Logger
	events chan Event

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewLocal(h *Handler, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{
		h:      h,
		log:    log.Named("bridge"),
		events: make(chan Event, 64),
	}
}

func (l *Local) Send(in Intent) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return errBridgeClosed
	}
	l.wg.Add(1)
	l.mu.Unlock()

	// Intents run off the caller's loop; results come back as events.
	go func() {
		defer l.wg.Done()
		l.h.Handle(context.Background(), in, l.emit)
	}()
	return nil
}

func (l *Local) emit(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.events <- ev:
	default:
		// The viewer has stopped draining; dropping is safer than blocking
		// the handler. The in-flight timeout will clean up after us.
		l.log.Warn("event queue full, dropping", zap.String("type", string(ev.Type)))
	}
}

func (l *Local) Events() <-chan Event { return l.events }

func (l *Local) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.wg.Wait()
	close(l.events)
	return nil
}
