package session

import (
	"strings"
	"testing"

	"github.com/sagostin/go-esme/internal/codec"
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
)

func TestBuildSubmitsSinglePartGSM7(t *testing.T) {
	registry := codec.NewRegistry(nil)
	msg := &message.Message{
		Destination: pdu.PhoneNumber{Number: "123"},
		Text:        "hello world",
	}
	submits, refNum, err := buildSubmits(msg, registry, "gsm0338", false, false)
	if err != nil {
		t.Fatalf("buildSubmits: %v", err)
	}
	if len(submits) != 1 {
		t.Fatalf("expected 1 submit, got %d", len(submits))
	}
	if refNum != "" {
		t.Fatalf("expected no CSMS reference for a single-part message, got %q", refNum)
	}
	if submits[0].EsmClass&esmClassUDHI != 0 {
		t.Fatal("a single-part submission must not set the UDHI bit")
	}
}

func TestBuildSubmitsMultiPartGSM7SetsUDHAndSharedRef(t *testing.T) {
	registry := codec.NewRegistry(nil)
	msg := &message.Message{
		Destination: pdu.PhoneNumber{Number: "123"},
		Text:        strings.Repeat("a", 200),
	}
	submits, refNum, err := buildSubmits(msg, registry, "gsm0338", false, false)
	if err != nil {
		t.Fatalf("buildSubmits: %v", err)
	}
	if len(submits) < 2 {
		t.Fatalf("expected multiple parts for 200 septets, got %d", len(submits))
	}
	if refNum == "" {
		t.Fatal("expected a shared CSMS reference for a multipart message")
	}
	for i, p := range submits {
		if p.EsmClass&esmClassUDHI == 0 {
			t.Fatalf("part %d missing UDHI bit", i)
		}
	}
}

func TestBuildSubmitsAutoMessagePayloadSkipsSegmentation(t *testing.T) {
	registry := codec.NewRegistry(nil)
	msg := &message.Message{
		Destination: pdu.PhoneNumber{Number: "123"},
		Text:        strings.Repeat("a", 200),
	}
	submits, refNum, err := buildSubmits(msg, registry, "gsm0338", true, false)
	if err != nil {
		t.Fatalf("buildSubmits: %v", err)
	}
	if len(submits) != 1 {
		t.Fatalf("expected 1 submit via message_payload, got %d", len(submits))
	}
	if refNum != "" {
		t.Fatal("a message_payload submission carries no CSMS reference")
	}
	if len(submits[0].MessagePayload) == 0 {
		t.Fatal("expected the body to land in message_payload")
	}
}

func TestBuildSubmitsDefaultEncodingFallsBackToUCS2(t *testing.T) {
	registry := codec.NewRegistry(nil)
	msg := &message.Message{
		Destination: pdu.PhoneNumber{Number: "123"},
		Text:        "emoji \U0001F600",
	}
	submits, _, err := buildSubmits(msg, registry, "gsm0338", false, false)
	if err != nil {
		t.Fatalf("buildSubmits: %v", err)
	}
	if msg.Encoding != "ucs2" {
		t.Fatalf("expected fallback to ucs2, got %q", msg.Encoding)
	}
	if len(submits) != 1 {
		t.Fatalf("expected 1 submit, got %d", len(submits))
	}
}

func TestBuildSubmitsExplicitEncodingFailureIsNotFallback(t *testing.T) {
	registry := codec.NewRegistry(nil)
	msg := &message.Message{
		Destination: pdu.PhoneNumber{Number: "123"},
		Text:        "emoji \U0001F600",
		Encoding:    "gsm0338",
	}
	if _, _, err := buildSubmits(msg, registry, "gsm0338", false, false); err == nil {
		t.Fatal("expected an explicitly chosen encoding that can't represent the text to fail, not silently fall back")
	}
}

func TestUDHFromDeliverSmRoundTrip(t *testing.T) {
	segs := codec.SplitGSM7(strings.Repeat("a", 200), codec.SplitOptions{RefNum: 7})
	d := &pdu.DeliverSm{
		EsmClass:     esmClassUDHI,
		ShortMessage: append(append([]byte{}, segs[0].UDH...), []byte("partbytes")...),
	}
	ref, seq, total, ok := udhFromDeliverSm(d)
	if !ok {
		t.Fatal("expected ok=true for a UDHI-flagged deliver_sm")
	}
	if ref != "7" || seq != 1 || total != len(segs) {
		t.Fatalf("got (ref=%q, seq=%d, total=%d), want (7, 1, %d)", ref, seq, total, len(segs))
	}
}

func TestUDHFromDeliverSmNonConcatenated(t *testing.T) {
	d := &pdu.DeliverSm{EsmClass: 0, ShortMessage: []byte("plain text")}
	if _, _, _, ok := udhFromDeliverSm(d); ok {
		t.Fatal("expected ok=false when the UDHI bit is not set")
	}
}

func TestStripUDH(t *testing.T) {
	udh := []byte{0x05, 0x00, 0x03, 0x01, 0x02, 0x01}
	body := append(append([]byte{}, udh...), []byte("hello")...)
	stripped := stripUDH(body)
	if string(stripped) != "hello" {
		t.Fatalf("got %q, want hello", stripped)
	}
}
