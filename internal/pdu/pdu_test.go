package pdu

import (
	"bytes"
	"testing"
)

func encodeDecodeRoundTrip(t *testing.T, p PDU, seq uint32, status Status) (Header, PDU) {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, p, seq, status); err != nil {
		t.Fatalf("encode: %v", err)
	}
	h, decoded, err := ReadPDU(&buf)
	if err != nil {
		t.Fatalf("ReadPDU: %v", err)
	}
	if h.CommandID != p.CommandID() {
		t.Fatalf("command id mismatch: got 0x%08x, want 0x%08x", h.CommandID, p.CommandID())
	}
	if h.Sequence != seq {
		t.Fatalf("sequence mismatch: got %d, want %d", h.Sequence, seq)
	}
	if h.Status != status {
		t.Fatalf("status mismatch: got %v, want %v", h.Status, status)
	}
	return h, decoded
}

func TestBindTransceiverRoundTrip(t *testing.T) {
	req := &BindTransceiver{BindBody{
		SystemID: "esmeclient", Password: "secret12", SystemType: "VMS",
		InterfaceVersion: 0x34, AddrTon: 1, AddrNpi: 1, AddressRange: "",
	}}
	_, decodedAny := encodeDecodeRoundTrip(t, req, 1, StatusOK)
	decoded := decodedAny.(*BindTransceiver)
	if decoded.SystemID != "esmeclient" || decoded.Password != "secret12" || decoded.SystemType != "VMS" {
		t.Fatalf("decoded bind mismatch: %+v", decoded)
	}
	if decoded.InterfaceVersion != 0x34 || decoded.AddrTon != 1 || decoded.AddrNpi != 1 {
		t.Fatalf("decoded bind fields mismatch: %+v", decoded)
	}
}

func TestBindReceiverCommandID(t *testing.T) {
	if (&BindReceiver{}).CommandID() != BindReceiverID {
		t.Fatal("BindReceiver must encode as bind_receiver's command id")
	}
}

func TestSubmitSmRoundTrip(t *testing.T) {
	req := &SubmitSm{
		ServiceType: "",
		Source:      PhoneNumber{Number: "12025550123", TON: 1, NPI: 1},
		Destination: PhoneNumber{Number: "447700900123", TON: 1, NPI: 1},
		DataCoding:  0,
		ShortMessage: []byte("hello world"),
		OptionalParams: []TLV{
			{Tag: 0x001D, Value: []byte{0x01}},
		},
	}
	_, decodedAny := encodeDecodeRoundTrip(t, req, 42, StatusOK)
	decoded := decodedAny.(*SubmitSm)
	if decoded.Source.Number != "12025550123" || decoded.Destination.Number != "447700900123" {
		t.Fatalf("address mismatch: %+v", decoded)
	}
	if string(decoded.ShortMessage) != "hello world" {
		t.Fatalf("short_message mismatch: %q", decoded.ShortMessage)
	}
	if len(decoded.OptionalParams) != 1 || decoded.OptionalParams[0].Tag != 0x001D {
		t.Fatalf("optional params mismatch: %+v", decoded.OptionalParams)
	}
}

func TestSubmitSmValidateRejectsBothBodyForms(t *testing.T) {
	p := &SubmitSm{
		Destination:    PhoneNumber{Number: "123"},
		ShortMessage:   []byte("a"),
		MessagePayload: []byte("b"),
	}
	if err := p.Validate(); err != ErrBothBodyForms {
		t.Fatalf("got %v, want ErrBothBodyForms", err)
	}
}

func TestSubmitSmValidateRejectsEmptyBody(t *testing.T) {
	p := &SubmitSm{Destination: PhoneNumber{Number: "123"}}
	if err := p.Validate(); err != ErrEmptyBody {
		t.Fatalf("got %v, want ErrEmptyBody", err)
	}
}

func TestSubmitSmValidateRejectsEmptyDestination(t *testing.T) {
	p := &SubmitSm{ShortMessage: []byte("a")}
	if err := p.Validate(); err != ErrEmptyDestination {
		t.Fatalf("got %v, want ErrEmptyDestination", err)
	}
}

func TestSubmitSmValidateRejectsMessagePayloadTagInOptionalParams(t *testing.T) {
	p := &SubmitSm{
		Destination:    PhoneNumber{Number: "123"},
		ShortMessage:   []byte("a"),
		OptionalParams: []TLV{{Tag: TagMessagePayload, Value: []byte("x")}},
	}
	if err := p.Validate(); err != ErrMessagePayloadTag {
		t.Fatalf("got %v, want ErrMessagePayloadTag", err)
	}
}

func TestSubmitSmMessagePayloadRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0x41}, 300)
	req := &SubmitSm{
		Destination:    PhoneNumber{Number: "123"},
		MessagePayload: payload,
	}
	_, decodedAny := encodeDecodeRoundTrip(t, req, 1, StatusOK)
	decoded := decodedAny.(*SubmitSm)
	if !bytes.Equal(decoded.MessagePayload, payload) {
		t.Fatal("message_payload round trip mismatch")
	}
	if len(decoded.ShortMessage) != 0 {
		t.Fatal("short_message must stay empty when message_payload carries the body")
	}
}

func TestDeliverSmIsReceipt(t *testing.T) {
	receipt := DeliverSm{EsmClass: 0b00000100} // bits 2-5 = 0001
	if !receipt.IsReceipt() {
		t.Fatal("expected esm_class 0x04 to be recognized as a receipt")
	}
	notReceipt := DeliverSm{EsmClass: 0x00}
	if notReceipt.IsReceipt() {
		t.Fatal("expected esm_class 0x00 to not be a receipt")
	}
}

func TestDeliverSmTextPrefersMessagePayload(t *testing.T) {
	d := DeliverSm{ShortMessage: []byte("short"), MessagePayload: []byte("payload")}
	if string(d.Text()) != "payload" {
		t.Fatalf("got %q, want payload", d.Text())
	}
	d2 := DeliverSm{ShortMessage: []byte("short")}
	if string(d2.Text()) != "short" {
		t.Fatalf("got %q, want short", d2.Text())
	}
}

func TestUnbindRoundTrip(t *testing.T) {
	encodeDecodeRoundTrip(t, &Unbind{}, 7, StatusOK)
}

func TestEnquireLinkRoundTrip(t *testing.T) {
	encodeDecodeRoundTrip(t, &EnquireLink{}, 9, StatusOK)
}

func TestReadPDUUnknownCommandID(t *testing.T) {
	var buf bytes.Buffer
	h := Header{Length: HeaderLen, CommandID: 0x7FFFFFFF, Status: StatusOK, Sequence: 1}
	hb, _ := h.MarshalBinary()
	buf.Write(hb)
	if _, _, err := ReadPDU(&buf); err == nil {
		t.Fatal("expected error reading an unrecognized command id")
	}
}

func TestReadPDURejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	h := Header{Length: MaxPDUSize + 1, CommandID: EnquireLinkID, Status: StatusOK, Sequence: 1}
	hb, _ := h.MarshalBinary()
	buf.Write(hb)
	if _, _, err := ReadPDU(&buf); err == nil {
		t.Fatal("expected error reading a PDU whose declared length exceeds MaxPDUSize")
	}
}

func TestStatusOKAcceptsAlreadyBound(t *testing.T) {
	if !StatusAlyBnd.OK() {
		t.Fatal("StatusAlyBnd must be tolerated as an OK bind outcome")
	}
	if StatusThrottled.OK() {
		t.Fatal("StatusThrottled must not be treated as OK")
	}
}

func TestStatusStringKnownAndUnknown(t *testing.T) {
	if StatusOK.String() != "ESME_ROK" {
		t.Fatalf("got %q, want ESME_ROK", StatusOK.String())
	}
	if s := Status(0x12345678).String(); s == "" {
		t.Fatal("unknown status must still stringify to something non-empty")
	}
}

func TestBindRespKeepsConcreteResponseID(t *testing.T) {
	var buf bytes.Buffer
	resp := &BindResp{SystemID: "smsc", RespID: BindReceiverRespID}
	if err := Encode(&buf, resp, 5, StatusOK); err != nil {
		t.Fatalf("encode: %v", err)
	}
	h, decoded, err := ReadPDU(&buf)
	if err != nil {
		t.Fatalf("ReadPDU: %v", err)
	}
	if h.CommandID != BindReceiverRespID {
		t.Fatalf("header command = 0x%08x, want bind_receiver_resp", uint32(h.CommandID))
	}
	if decoded.CommandID() != BindReceiverRespID {
		t.Fatalf("decoded body command = 0x%08x, want bind_receiver_resp", uint32(decoded.CommandID()))
	}
}
