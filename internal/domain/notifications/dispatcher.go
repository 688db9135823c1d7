package notifications

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Dispatcher delivers mail on a background worker so request handlers never
// wait on SMTP. Enqueue never blocks; a full queue drops the message.
type Dispatcher struct {
	mailer  Mailer
	queue   chan Message
	timeout time.Duration
	dropped atomic.Uint64
	sent    atomic.Uint64
}

func NewDispatcher(mailer Mailer, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		mailer:  mailer,
		queue:   make(chan Message, size),
		timeout: 30 * time.Second,
	}
}

// Enqueue reports whether the message was accepted. Messages without
// recipients are ignored.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if len(msg.To) == 0 {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.dropped.Add(1)
		slog.Warn("email queue full, dropping message", "subject", msg.Subject, "recipients", len(msg.To))
		return false
	}
}

// Run sends queued mail until ctx is done, then drains what is left.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case msg := <-d.queue:
			d.send(context.Background(), msg)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.send(context.Background(), msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) send(parent context.Context, msg Message) {
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()
	if err := d.mailer.Send(ctx, msg); err != nil {
		slog.Warn("email send failed", "subject", msg.Subject, "err", err)
		return
	}
	d.sent.Add(1)
}

func (d *Dispatcher) Stats() (sent, dropped uint64) {
	return d.sent.Load(), d.dropped.Load()
}
