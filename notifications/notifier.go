// Package notifications delivers best-effort booking events to external channels.
// Delivery failures are logged by the Dispatcher and never reach the caller.
package notifications

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

const (
	EventClientCredentials    = "client_credentials"
	EventBookingConfirmed     = "booking_confirmed"
	EventRequestReceived      = "request_received"
	EventRequestApproved      = "request_approved"
	EventRequestRejected      = "request_rejected"
	EventRequestCancelled     = "request_cancelled"
	EventAppointmentCancelled = "appointment_cancelled"
	EventAppointmentReminder  = "appointment_reminder"
)

// Payload is the data handed to a template. Keys used by the drivers:
// "salonId", "name", "phone", "email".
type Payload map[string]any

func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

type Notifier interface {
	Notify(ctx context.Context, event string, payload Payload) error
}

type NotifierFunc func(ctx context.Context, event string, payload Payload) error

func (f NotifierFunc) Notify(ctx context.Context, event string, payload Payload) error {
	return f(ctx, event, payload)
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event string, payload Payload) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogNotifier struct {
	Logger *zap.Logger
}

// secretKeys never leave the process through a log line.
var secretKeys = map[string]bool{
	"temporaryPassword": true,
}

// Redacted returns a copy of p with secret values masked.
func (p Payload) Redacted() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if secretKeys[k] {
			v = "[REDACTED]"
		}
		out[k] = v
	}
	return out
}

func (l LogNotifier) Notify(_ context.Context, event string, payload Payload) error {
	l.Logger.Info("notification", zap.String("event", event), zap.Any("payload", payload.Redacted()))
	return nil
}

// Sent is one event captured by a Recorder.
type Sent struct {
	Event   string
	Payload Payload
}

// Recorder keeps every event in memory. Used by tests and local runs.
type Recorder struct {
	mu     sync.Mutex
	events []Sent
	Err    error
}

func (r *Recorder) Notify(_ context.Context, event string, payload Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Sent{Event: event, Payload: payload})
	return r.Err
}

func (r *Recorder) Events() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Count(event string) int {
	n := 0
	for _, s := range r.Events() {
		if s.Event == event {
			n++
		}
	}
	return n
}
