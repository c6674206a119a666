package token

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Validator is the handle of a running validity check loop.
type Validator struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs Check every check interval until the returned validator is
// stopped, ctx is done or the session stops being valid.
func (m *Manager) Start(ctx context.Context) *Validator {
	ctx, cancel := context.WithCancel(ctx)

	v := &Validator{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go v.run(ctx, m)

	m.log.Debug().Dur("interval", m.checkInterval).Msg("token validator started")

	return v
}

func (v *Validator) run(ctx context.Context, m *Manager) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(v.done)
			return
		case <-ticker.C:
		}

		notify, err := m.check(ctx)
		if err == nil || !endsValidation(err, m) {
			continue
		}

		m.log.Debug().Err(err).Msg("token validator finished")

		// done is closed first so the handler may call Stop.
		close(v.done)
		notify()

		return
	}
}

func endsValidation(err error, m *Manager) bool {
	return errors.Is(err, ErrAuthenticationRequired) || m.State() == Invalid
}

// Stop cancels the loop and waits for it to exit. It is safe to call more
// than once and from the invalid handler.
func (v *Validator) Stop() {
	if v == nil {
		return
	}

	v.once.Do(v.cancel)
	<-v.done
}

// Done is closed when the loop has exited.
func (v *Validator) Done() <-chan struct{} {
	return v.done
}
