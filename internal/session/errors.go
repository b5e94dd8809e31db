package session

import (
	"github.com/sagostin/go-esme/internal/esmeerr"
	"github.com/sagostin/go-esme/internal/pdu"
)

// ProtocolStatusError wraps a non-OK command_status the SMSC returned for
// a submit_sm, so callers can inspect the status code through errors.As
// instead of string-matching the Hook's SendError message.
type ProtocolStatusError struct {
	Status pdu.Status
}

func (e *ProtocolStatusError) Error() string {
	return "session: smsc rejected submission: " + e.Status.String()
}

// Kind classifies this as a protocol-status failure unless the status is
// one of the two that feed the throttle handler instead.
func (e *ProtocolStatusError) Kind() esmeerr.Kind {
	if e.Status == pdu.StatusThrottled || e.Status == pdu.StatusMsgQFul {
		return esmeerr.KindThrottle
	}
	return esmeerr.KindProtocolStatus
}
