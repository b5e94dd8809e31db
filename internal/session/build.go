package session

import (
	"fmt"
	"strconv"

	"github.com/sagostin/go-esme/internal/codec"
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
)

const (
	singleSmsLimitGSM7 = 160
	singleSmsLimitUCS2 = 140
)

// buildSubmits turns one application Message into the one or more
// submit_sm bodies it becomes on the wire. refNum is the shared CSMS
// reference for a multipart result ("" for a single part). msg.Encoding
// is updated in place when the default encoding's encode fails and the
// fallback to ucs2 is taken, so the caller sees which encoding went out.
func buildSubmits(msg *message.Message, registry *codec.Registry, defaultEncoding string, autoPayload bool, use16BitRef bool) ([]*pdu.SubmitSm, string, error) {
	encName := msg.Encoding
	if encName == "" {
		encName = defaultEncoding
		if encName == "" {
			encName = "gsm0338"
		}
	}
	c, err := registry.Lookup(encName)
	if err != nil {
		return nil, "", fmt.Errorf("session: unknown encoding %q: %w", encName, err)
	}

	encoded, err := c.Encode(msg.Text, codec.Strict)
	if err != nil && msg.Encoding == "" {
		// Only the configured default falls back to ucs2; an explicitly
		// chosen encoding that fails is a validation error.
		encName = "ucs2"
		c, err = registry.Lookup(encName)
		if err == nil {
			encoded, err = c.Encode(msg.Text, codec.Strict)
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("session: encoding text as %s: %w", encName, err)
	}
	msg.Encoding = encName

	dataCoding := byte(0)
	if dc, ok := registry.DataCodingFor(encName); ok {
		dataCoding = byte(dc)
	}

	singleLimit := singleSmsLimitGSM7
	unitLen := codec.GSM7UnitLen(msg.Text)
	if encName == "ucs2" {
		singleLimit = singleSmsLimitUCS2
		unitLen = codec.UCS2UnitLen(msg.Text)
	}
	fits := unitLen <= singleLimit

	base := pdu.SubmitSm{
		ServiceType:          msg.ServiceType,
		Source:               msg.Source,
		Destination:          msg.Destination,
		ProtocolID:           0,
		PriorityFlag:         0,
		ScheduleDeliveryTime: msg.ScheduleDeliveryIn,
		ValidityPeriod:       msg.ValidityPeriod,
		RegisteredDelivery:   msg.RegisteredDelivery,
		DataCoding:           dataCoding,
	}

	if fits {
		p := base
		p.ShortMessage = encoded
		return []*pdu.SubmitSm{&p}, "", nil
	}

	if autoPayload || msg.AutoMessagePayload {
		if len(encoded) > 64*1024 {
			return nil, "", pdu.ErrPayloadTooBig
		}
		p := base
		p.MessagePayload = encoded
		return []*pdu.SubmitSm{&p}, "", nil
	}

	opts := codec.SplitOptions{Use16BitRef: use16BitRef}
	var segs []codec.Segment
	if encName == "ucs2" {
		segs = codec.SplitUCS2(msg.Text, opts)
	} else {
		segs = codec.SplitGSM7(msg.Text, opts)
	}

	submits := make([]*pdu.SubmitSm, len(segs))
	var refNum string
	for i, seg := range segs {
		partBytes, err := c.Encode(seg.Text, codec.Strict)
		if err != nil {
			return nil, "", fmt.Errorf("session: encoding segment %d: %w", seg.Seq, err)
		}
		p := base
		p.EsmClass = base.EsmClass | esmClassUDHI
		p.ShortMessage = append(append([]byte{}, seg.UDH...), partBytes...)
		submits[i] = &p
		if i == 0 {
			if ref, _, _, ok := codec.ParseUDH(seg.UDH); ok {
				refNum = strconv.Itoa(ref)
			}
		}
	}
	return submits, refNum, nil
}
