package events

import (
	"context"
	"errors"

	"github.com/jwebster45206/odyssey-engine/pkg/session"
)

// Local hands changes to an in-process consumer over a buffered channel.
// When the buffer is full the oldest pending change is dropped; consumers
// only need the latest state.
type Local struct {
	ch chan session.Change
}

var _ session.Notifier = (*Local)(nil)

func NewLocal(buffer int) *Local {
	if buffer < 1 {
		buffer = 1
	}
	return &Local{ch: make(chan session.Change, buffer)}
}

// C is the receive side.
func (l *Local) C() <-chan session.Change {
	return l.ch
}

func (l *Local) StateChanged(ctx context.Context, c session.Change) error {
	for {
		select {
		case l.ch <- c:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// Multi fans a change out to several notifiers and joins their errors.
type Multi []session.Notifier

func (m Multi) StateChanged(ctx context.Context, c session.Change) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.StateChanged(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards changes. Used when no Redis is configured.
type Nop struct{}

func (Nop) StateChanged(context.Context, session.Change) error { return nil }
