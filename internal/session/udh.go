package session

import (
	"strconv"

	"github.com/sagostin/go-esme/internal/codec"
	"github.com/sagostin/go-esme/internal/pdu"
)

const esmClassUDHI = 0x40

// udhFromDeliverSm reports the concatenation reference/sequence/total of
// an inbound deliver_sm carrying a user data header, signalled by the
// esm_class UDHI bit. ok is false for a non-concatenated message.
func udhFromDeliverSm(req *pdu.DeliverSm) (ref string, seq, total int, ok bool) {
	if req.EsmClass&esmClassUDHI == 0 {
		return "", 0, 0, false
	}
	text := req.Text()
	if len(text) == 0 {
		return "", 0, 0, false
	}
	udhLen := int(text[0]) + 1
	if udhLen > len(text) {
		return "", 0, 0, false
	}
	r, s, t, ok := codec.ParseUDH(text[:udhLen])
	if !ok {
		return "", 0, 0, false
	}
	return strconv.Itoa(r), s, t, true
}

func stripUDH(text []byte) []byte {
	if len(text) == 0 {
		return text
	}
	udhLen := int(text[0]) + 1
	if udhLen > len(text) {
		return text
	}
	return text[udhLen:]
}
