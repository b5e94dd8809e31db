// Package broker provides the Session.Broker implementations this client
// drains outbound messages from: an in-memory channel queue for single-
// process use, and an AMQP-backed queue for deployments that need the
// submission backlog to survive a process restart.
package broker

import (
	"context"

	"github.com/sagostin/go-esme/internal/message"
)

// Simple is a bounded in-memory queue. It satisfies session.Broker.
// Messages not yet dequeued are lost on process restart; use AMQP (the
// AMQP-backed implementation) when that matters.
type Simple struct {
	ch chan message.Message
}

// NewSimple builds a Simple broker with room for capacity queued messages
// before Enqueue blocks.
func NewSimple(capacity int) *Simple {
	if capacity <= 0 {
		capacity = 256
	}
	return &Simple{ch: make(chan message.Message, capacity)}
}

func (b *Simple) Enqueue(ctx context.Context, msg message.Message) error {
	select {
	case b.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Simple) Dequeue(ctx context.Context) (message.Message, error) {
	select {
	case msg := <-b.ch:
		return msg, nil
	case <-ctx.Done():
		return message.Message{}, ctx.Err()
	}
}
