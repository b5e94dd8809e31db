package pdu

import (
	"bytes"
	"time"
)

// SubmitSm is the body of a submit_sm PDU. ShortMessage and
// MessagePayload are mutually exclusive on the wire: exactly one carries
// the text. MessagePayload is emitted as the message_payload TLV but is
// never stored in OptionalParams.
type SubmitSm struct {
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

func (SubmitSm) CommandID() CommandID { return SubmitSmID }

// Validate enforces the body invariants: mutually exclusive body forms,
// non-empty destination, and no message_payload tag smuggled into
// OptionalParams.
func (p *SubmitSm) Validate() error {
	if len(p.ShortMessage) > 0 && len(p.MessagePayload) > 0 {
		return ErrBothBodyForms
	}
	if len(p.ShortMessage) == 0 && len(p.MessagePayload) == 0 {
		return ErrEmptyBody
	}
	if p.Destination.Number == "" {
		return ErrEmptyDestination
	}
	if len(p.ShortMessage) > 254 {
		return ErrShortMessageTooBig
	}
	if len(p.MessagePayload) > 64*1024 {
		return ErrPayloadTooBig
	}
	for _, t := range p.OptionalParams {
		if t.Tag == TagMessagePayload {
			return ErrMessagePayloadTag
		}
	}
	return nil
}

func (p SubmitSm) MarshalBinary() ([]byte, error) {
	if err := (&p).Validate(); err != nil {
		return nil, err
	}
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

func (p *SubmitSm) UnmarshalBinary(body []byte) error {
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

// SubmitSmResp is the body of a submit_sm_resp PDU.
type SubmitSmResp struct {
	MessageID      string
	OptionalParams []TLV
}

func (SubmitSmResp) CommandID() CommandID { return SubmitSmRespID }

func (p SubmitSmResp) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	writeCString(buf, p.MessageID)
	for _, t := range p.OptionalParams {
		encodeTLV(buf, t.Tag, t.Value)
	}
	return buf.Bytes(), nil
}

func (p *SubmitSmResp) UnmarshalBinary(body []byte) error {
	r := newReader(body)
	var err error
	if p.MessageID, err = r.readCString(65); err != nil {
		return err
	}
	p.OptionalParams, err = decodeTLVs(r.Bytes())
	return err
}

// ScheduleIn is a convenience that formats d as a relative
// schedule_delivery_time / validity_period string.
func ScheduleIn(d time.Duration) (string, error) {
	return FormatRelative(d)
}
