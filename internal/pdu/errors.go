package pdu

import "errors"

// Sentinel decode/encode failures.
var (
	ErrShortHeader        = errors.New("pdu: short header")
	ErrLengthMismatch     = errors.New("pdu: declared length does not match body")
	ErrUnknownCommandID   = errors.New("pdu: unknown command id")
	ErrCStringNotNull     = errors.New("pdu: c-octet string missing nul terminator")
	ErrCStringTooLong     = errors.New("pdu: c-octet string too long")
	ErrShortMessageTooBig = errors.New("pdu: encoded short_message exceeds 254 bytes")
	ErrPayloadTooBig      = errors.New("pdu: message_payload exceeds 64KiB")
	ErrTLVTruncated       = errors.New("pdu: truncated optional parameter")
	ErrMalformedBody      = errors.New("pdu: malformed body")
	ErrInvalidTime        = errors.New("pdu: unparseable SMPP time string")
	ErrRelativeTimeTooBig = errors.New("pdu: relative validity period exceeds 63 weeks")
	ErrBothBodyForms      = errors.New("pdu: short_message and message_payload both set")
	ErrEmptyBody          = errors.New("pdu: neither short_message nor message_payload set")
	ErrEmptyDestination   = errors.New("pdu: destination number is empty")
	ErrMessagePayloadTag  = errors.New("pdu: message_payload tag must not appear in optional params")
)

// IsParseError reports whether err is a malformed-PDU failure rather
// than a transport failure. The receiver answers a parse failure with
// generic_nack and keeps reading; a transport failure ends the session.
func IsParseError(err error) bool {
	for _, sentinel := range []error{
		ErrUnknownCommandID,
		ErrMalformedBody,
		ErrCStringNotNull,
		ErrCStringTooLong,
		ErrTLVTruncated,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
