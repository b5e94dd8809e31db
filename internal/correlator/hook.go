package correlator

import (
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
)

// Hook is how the correlator and session report events back into the
// application. A NoOpHook satisfies it trivially; real applications
// implement the methods they care about and embed NoOpHook for the rest.
type Hook interface {
	// Sending is called once per outbound message, before its first
	// submit_sm is written to the wire.
	Sending(msg message.Message)
	// Received is called for every inbound user message (a deliver_sm
	// that is not a delivery receipt).
	Received(msg message.Message)
	// SendError is called when a submission cannot be completed: the
	// text could not be encoded, the request failed or timed out waiting
	// for a response, the SMSC rejected it with a non-OK status, or a
	// multipart submission ended with a part not sent.
	SendError(msg message.Message, err error)
	// DeliveryReport is called when a delivery receipt resolves against
	// a previously submitted message.
	DeliveryReport(rec pdu.Receipt, original message.Message)
}

// NoOpHook implements Hook with methods that do nothing. Embed it in an
// application hook to only override the callbacks that matter.
type NoOpHook struct{}

func (NoOpHook) Sending(message.Message)                     {}
func (NoOpHook) Received(message.Message)                    {}
func (NoOpHook) SendError(message.Message, error)            {}
func (NoOpHook) DeliveryReport(pdu.Receipt, message.Message) {}
