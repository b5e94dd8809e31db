package pdu

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
)

// Header is the fixed 16-byte prefix of every SMPP PDU.
type Header struct {
	Length    uint32
	CommandID CommandID
	Status    Status
	Sequence  uint32
}

func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.Length)
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.CommandID))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.Status))
	binary.BigEndian.PutUint32(buf[12:16], h.Sequence)
	return buf, nil
}

func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderLen {
		return ErrShortHeader
	}
	h.Length = binary.BigEndian.Uint32(b[0:4])
	h.CommandID = CommandID(binary.BigEndian.Uint32(b[4:8]))
	h.Status = Status(binary.BigEndian.Uint32(b[8:12]))
	h.Sequence = binary.BigEndian.Uint32(b[12:16])
	return nil
}

// PDU is implemented by every concrete message body this client sends or
// receives.
type PDU interface {
	CommandID() CommandID
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// New constructs a zero-value PDU body for the given command ID, or nil
// if the command is not one this client handles.
func New(id CommandID) PDU {
	switch id {
	case GenericNackID:
		return &GenericNack{}
	case BindReceiverID:
		return &BindReceiver{}
	case BindReceiverRespID:
		return &BindResp{RespID: BindReceiverRespID}
	case BindTransmitterID:
		return &BindTransmitter{}
	case BindTransmitterRespID:
		return &BindResp{RespID: BindTransmitterRespID}
	case BindTransceiverID:
		return &BindTransceiver{}
	case BindTransceiverRespID:
		return &BindResp{RespID: BindTransceiverRespID}
	case SubmitSmID:
		return &SubmitSm{}
	case SubmitSmRespID:
		return &SubmitSmResp{}
	case DeliverSmID:
		return &DeliverSm{}
	case DeliverSmRespID:
		return &DeliverSmResp{}
	case UnbindID:
		return &Unbind{}
	case UnbindRespID:
		return &UnbindResp{}
	case EnquireLinkID:
		return &EnquireLink{}
	case EnquireLinkRespID:
		return &EnquireLinkResp{}
	}
	return nil
}

// IsRequest reports whether id names a request command (as opposed to a
// response, which carries the high bit).
func IsRequest(id CommandID) bool {
	return !id.IsResponse()
}

// Encode writes header+body for p to w, using seq as the header's
// sequence number and status as its command_status.
func Encode(w io.Writer, p PDU, seq uint32, status Status) error {
	body, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	h := Header{
		Length:    uint32(HeaderLen + len(body)),
		CommandID: p.CommandID(),
		Status:    status,
		Sequence:  seq,
	}
	hb, _ := h.MarshalBinary()
	buf := make([]byte, 0, len(hb)+len(body))
	buf = append(buf, hb...)
	buf = append(buf, body...)
	_, err = w.Write(buf)
	return err
}

// ReadPDU reads exactly one PDU (header then body) from r.
func ReadPDU(r io.Reader) (Header, PDU, error) {
	var hb [HeaderLen]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return Header{}, nil, err
	}
	var h Header
	if err := h.UnmarshalBinary(hb[:]); err != nil {
		return h, nil, err
	}
	if h.Length < HeaderLen || h.Length > MaxPDUSize {
		return h, nil, fmt.Errorf("%w: %d", ErrLengthMismatch, h.Length)
	}

	body := make([]byte, h.Length-HeaderLen)
	if len(body) > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return h, nil, err
		}
	}

	p := New(h.CommandID)
	if p == nil {
		return h, nil, fmt.Errorf("%w: 0x%08x", ErrUnknownCommandID, uint32(h.CommandID))
	}
	// The body bytes were fully consumed above, so a decode failure here
	// leaves the stream in sync: the caller may nack and keep reading.
	if err := p.UnmarshalBinary(body); err != nil {
		return h, p, fmt.Errorf("%w: decoding 0x%08x body: %v", ErrMalformedBody, uint32(h.CommandID), err)
	}
	return h, p, nil
}
