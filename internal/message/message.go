// Package message defines the application-level submission object that
// flows from the broker through admission control into the wire PDU, and
// back out again through the Hook contract.
package message

import "github.com/sagostin/go-esme/internal/pdu"

// Message is what the broker hands the send pipeline and what the Hook
// contract reports back to the application. Source/Destination/Text are
// promoted from the broker payload into a SubmitSm body by the session;
// LogID and ExtraData never appear on the wire.
type Message struct {
	Source             pdu.PhoneNumber
	Destination        pdu.PhoneNumber
	Text               string
	Encoding           string // explicit encoding name, or "" to use the configured default
	AutoMessagePayload bool
	ServiceType        string
	RegisteredDelivery byte
	ScheduleDeliveryIn string // relative SMPP time string, or "" for immediate
	ValidityPeriod     string
	LogID              string
	ExtraData          map[string]string
}
