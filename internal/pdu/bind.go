package pdu

import "bytes"

// BindBody is the mandatory-field shape shared by bind_transmitter,
// bind_receiver and bind_transceiver.
type BindBody struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion byte
	AddrTon          TON
	AddrNpi          NPI
	AddressRange     string
}

func (b BindBody) marshal() []byte {
	buf := &bytes.Buffer{}
	writeCString(buf, b.SystemID)
	writeCString(buf, b.Password)
	writeCString(buf, b.SystemType)
	buf.WriteByte(b.InterfaceVersion)
	buf.WriteByte(byte(b.AddrTon))
	buf.WriteByte(byte(b.AddrNpi))
	writeCString(buf, b.AddressRange)
	return buf.Bytes()
}

func (b *BindBody) unmarshal(body []byte) error {
	r := newReader(body)
	var err error
	if b.SystemID, err = r.readCString(16); err != nil {
		return err
	}
	if b.Password, err = r.readCString(9); err != nil {
		return err
	}
	if b.SystemType, err = r.readCString(13); err != nil {
		return err
	}
	var iv, ton, npi byte
	if iv, err = r.ReadByte(); err != nil {
		return err
	}
	b.InterfaceVersion = iv
	if ton, err = r.ReadByte(); err != nil {
		return err
	}
	b.AddrTon = TON(ton)
	if npi, err = r.ReadByte(); err != nil {
		return err
	}
	b.AddrNpi = NPI(npi)
	if b.AddressRange, err = r.readCString(41); err != nil {
		return err
	}
	return nil
}

// BindTransmitter is the body of a bind_transmitter PDU.
type BindTransmitter struct{ BindBody }

func (BindTransmitter) CommandID() CommandID              { return BindTransmitterID }
func (p BindTransmitter) MarshalBinary() ([]byte, error)  { return p.BindBody.marshal(), nil }
func (p *BindTransmitter) UnmarshalBinary(b []byte) error { return p.BindBody.unmarshal(b) }

// BindReceiver is the body of a bind_receiver PDU.
type BindReceiver struct{ BindBody }

func (BindReceiver) CommandID() CommandID              { return BindReceiverID }
func (p BindReceiver) MarshalBinary() ([]byte, error)  { return p.BindBody.marshal(), nil }
func (p *BindReceiver) UnmarshalBinary(b []byte) error { return p.BindBody.unmarshal(b) }

// BindTransceiver is the body of a bind_transceiver PDU.
type BindTransceiver struct{ BindBody }

func (BindTransceiver) CommandID() CommandID              { return BindTransceiverID }
func (p BindTransceiver) MarshalBinary() ([]byte, error)  { return p.BindBody.marshal(), nil }
func (p *BindTransceiver) UnmarshalBinary(b []byte) error { return p.BindBody.unmarshal(b) }

// BindResp is the shared body of bind_{transmitter,receiver,transceiver}_resp.
// RespID records which concrete bind response this is; New fills it in on
// decode, and a zero RespID encodes as bind_transceiver_resp.
type BindResp struct {
	SystemID string
	RespID   CommandID
}

func (p BindResp) CommandID() CommandID {
	if p.RespID != 0 {
		return p.RespID
	}
	return BindTransceiverRespID
}

func (p BindResp) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	writeCString(buf, p.SystemID)
	return buf.Bytes(), nil
}

func (p *BindResp) UnmarshalBinary(body []byte) error {
	r := newReader(body)
	var err error
	p.SystemID, err = r.readCString(16)
	return err
}
