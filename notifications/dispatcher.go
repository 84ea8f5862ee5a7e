package notifications

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher sends events on background goroutines with their own timeout.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, logger *zap.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: notifier, logger: logger, timeout: timeout}
}

// Send returns immediately. The request context is not reused so a finished
// HTTP request does not cancel delivery.
func (d *Dispatcher) Send(event string, payload Payload) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notifier panicked", zap.String("event", event), zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, event, payload); err != nil {
			d.logger.Warn("notification failed", zap.String("event", event), zap.Error(err))
			return
		}
		d.logger.Debug("notification sent", zap.String("event", event))
	}()
}

// Wait blocks until in-flight sends finish.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
