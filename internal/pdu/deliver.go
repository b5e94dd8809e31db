package pdu

import "bytes"

// DeliverSm is the body of a deliver_sm PDU. It shares SubmitSm's wire
// shape exactly; kept as a distinct type because delivery receipts and
// inbound segmented messages are handled differently by the session.
type DeliverSm struct {
	ServiceType          string
	Source               PhoneNumber
	Destination          PhoneNumber
	EsmClass             byte
	ProtocolID           byte
	PriorityFlag         byte
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   byte
	ReplaceIfPresentFlag byte
	DataCoding           byte
	SmDefaultMsgID       byte
	ShortMessage         []byte
	MessagePayload       []byte
	OptionalParams       []TLV
}

func (DeliverSm) CommandID() CommandID { return DeliverSmID }

// IsReceipt reports whether this deliver_sm carries a delivery receipt:
// the esm_class message-type bits (2-5) equal 1.
func (p DeliverSm) IsReceipt() bool {
	return (p.EsmClass&0b00111100)>>2 == 1
}

// Text returns the message body regardless of which wire form carried it.
func (p DeliverSm) Text() []byte {
	if len(p.MessagePayload) > 0 {
		return p.MessagePayload
	}
	return p.ShortMessage
}

func (p DeliverSm) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	writeCString(buf, p.ServiceType)
	buf.Write(p.Source.marshal())
	buf.Write(p.Destination.marshal())
	buf.WriteByte(p.EsmClass)
	buf.WriteByte(p.ProtocolID)
	buf.WriteByte(p.PriorityFlag)
	writeCString(buf, p.ScheduleDeliveryTime)
	writeCString(buf, p.ValidityPeriod)
	buf.WriteByte(p.RegisteredDelivery)
	buf.WriteByte(p.ReplaceIfPresentFlag)
	buf.WriteByte(p.DataCoding)
	buf.WriteByte(p.SmDefaultMsgID)
	if len(p.ShortMessage) > 254 {
		return nil, ErrShortMessageTooBig
	}
	buf.WriteByte(byte(len(p.ShortMessage)))
	buf.Write(p.ShortMessage)
	for _, t := range p.OptionalParams {
		encodeTLV(buf, t.Tag, t.Value)
	}
	if len(p.MessagePayload) > 0 {
		encodeTLV(buf, TagMessagePayload, p.MessagePayload)
	}
	return buf.Bytes(), nil
}

func (p *DeliverSm) UnmarshalBinary(body []byte) error {
	r := newReader(body)
	var err error
	if p.ServiceType, err = r.readCString(6); err != nil {
		return err
	}
	if p.Source, err = readPhoneNumber(r); err != nil {
		return err
	}
	if p.Destination, err = readPhoneNumber(r); err != nil {
		return err
	}
	if p.EsmClass, err = r.ReadByte(); err != nil {
		return err
	}
	if p.ProtocolID, err = r.ReadByte(); err != nil {
		return err
	}
	if p.PriorityFlag, err = r.ReadByte(); err != nil {
		return err
	}
	if p.ScheduleDeliveryTime, err = r.readCString(17); err != nil {
		return err
	}
	if p.ValidityPeriod, err = r.readCString(17); err != nil {
		return err
	}
	if p.RegisteredDelivery, err = r.ReadByte(); err != nil {
		return err
	}
	if p.ReplaceIfPresentFlag, err = r.ReadByte(); err != nil {
		return err
	}
	if p.DataCoding, err = r.ReadByte(); err != nil {
		return err
	}
	if p.SmDefaultMsgID, err = r.ReadByte(); err != nil {
		return err
	}
	if p.ShortMessage, err = r.readLengthPrefixed(); err != nil {
		return err
	}
	tlvs, err := decodeTLVs(r.Bytes())
	if err != nil {
		return err
	}
	for _, t := range tlvs {
		if t.Tag == TagMessagePayload {
			p.MessagePayload = t.Value
			continue
		}
		p.OptionalParams = append(p.OptionalParams, t)
	}
	return nil
}

// DeliverSmResp is the body of a deliver_sm_resp PDU.
type DeliverSmResp struct {
	MessageID string
}

func (DeliverSmResp) CommandID() CommandID { return DeliverSmRespID }

func (p DeliverSmResp) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	writeCString(buf, p.MessageID)
	return buf.Bytes(), nil
}

func (p *DeliverSmResp) UnmarshalBinary(body []byte) error {
	r := newReader(body)
	var err error
	p.MessageID, err = r.readCString(65)
	return err
}
