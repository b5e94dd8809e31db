package session

import (
	"context"

	"github.com/sagostin/go-esme/internal/message"
)

// Broker is the outbound message queue collaborator: Client drains
// it continuously and must never see it panic. A broker implementation
// is responsible for its own persistence and retry; Dequeue may suspend
// indefinitely and must respect ctx cancellation.
type Broker interface {
	Enqueue(ctx context.Context, msg message.Message) error
	Dequeue(ctx context.Context) (message.Message, error)
}
