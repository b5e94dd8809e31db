package correlator

import (
	"context"
	"testing"
	"time"

	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
)

func newTestCorrelator(cfg Config) *Correlator {
	return New(cfg, newMemDeliveryStore(), newMemSegmentStore(), NoOpHook{})
}

func TestAwaitResolveDeliversResponse(t *testing.T) {
	c := newTestCorrelator(Config{})
	ch := c.Await(1, &pdu.EnquireLink{})
	ok := c.Resolve(pdu.Header{Sequence: 1, Status: pdu.StatusOK}, &pdu.EnquireLinkResp{})
	if !ok {
		t.Fatal("expected Resolve to find the registered sequence")
	}
	res := <-ch
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Header.Sequence != 1 {
		t.Fatalf("got sequence %d, want 1", res.Header.Sequence)
	}
}

func TestResolveUnknownSequenceReturnsFalse(t *testing.T) {
	c := newTestCorrelator(Config{})
	if c.Resolve(pdu.Header{Sequence: 99}, &pdu.EnquireLinkResp{}) {
		t.Fatal("expected Resolve to report false for a sequence nobody is awaiting")
	}
}

func TestSweepExpiresOutstandingRequest(t *testing.T) {
	c := newTestCorrelator(Config{RequestTTL: 10 * time.Millisecond})
	ch := c.Await(1, &pdu.EnquireLink{})
	time.Sleep(20 * time.Millisecond)
	c.Sweep(context.Background())
	res := <-ch
	if res.Err != ErrRequestTimeout {
		t.Fatalf("got %v, want ErrRequestTimeout", res.Err)
	}
	if c.OutstandingCount() != 0 {
		t.Fatalf("expected outstanding table to be empty after sweep, got %d", c.OutstandingCount())
	}
}

func TestSegmentStatusAggregatesCumulative(t *testing.T) {
	c := newTestCorrelator(Config{})
	c.TrackSegment(1, "ref1", 1, 2)
	c.TrackSegment(2, "ref1", 2, 2)

	if _, complete, _ := c.SegmentStatusFor("ref1"); complete {
		t.Fatal("expected segment status to be incomplete while parts are still sending")
	}

	c.ResolveSegment(1, pdu.StatusOK)
	c.ResolveSegment(2, pdu.StatusOK)

	cumulative, complete, ok := c.SegmentStatusFor("ref1")
	if !ok {
		t.Fatal("expected SegmentStatusFor to find a tracked ref_num")
	}
	if !complete {
		t.Fatal("expected every part resolved to mark the segment complete")
	}
	if cumulative != "SENT" {
		t.Fatalf("got %q, want SENT", cumulative)
	}
}

func TestSegmentStatusFailureDominatesCumulative(t *testing.T) {
	c := newTestCorrelator(Config{})
	c.TrackSegment(1, "ref2", 1, 2)
	c.TrackSegment(2, "ref2", 2, 2)
	c.ResolveSegment(1, pdu.StatusOK)
	c.ResolveSegment(2, pdu.StatusSysErr)

	cumulative, complete, ok := c.SegmentStatusFor("ref2")
	if !ok || !complete {
		t.Fatalf("expected complete segment status, got complete=%v ok=%v", complete, ok)
	}
	if cumulative != "FAILED" {
		t.Fatalf("got %q, want FAILED (one failed part should dominate one sent part)", cumulative)
	}
}

func TestSegmentStatusForUnknownRef(t *testing.T) {
	c := newTestCorrelator(Config{})
	if _, _, ok := c.SegmentStatusFor("never-tracked"); ok {
		t.Fatal("expected ok=false for an untracked ref_num")
	}
}

func TestTrackAndResolveDelivery(t *testing.T) {
	c := newTestCorrelator(Config{})
	msg := message.Message{
		Source:      pdu.PhoneNumber{Number: "1000"},
		Destination: pdu.PhoneNumber{Number: "2000"},
		Text:        "hello",
		LogID:       "log-1",
	}
	if err := c.TrackDelivery(context.Background(), "msg-1", msg); err != nil {
		t.Fatalf("TrackDelivery: %v", err)
	}

	receipt := pdu.Receipt{MessageID: "msg-1", Stat: "DELIVRD"}
	matched, err := c.ResolveDelivery(context.Background(), receipt)
	if err != nil {
		t.Fatalf("ResolveDelivery: %v", err)
	}
	if !matched {
		t.Fatal("expected ResolveDelivery to match the tracked submission")
	}

	// A second resolve for the same message id must not match again: the
	// record is deleted once resolved.
	matched, err = c.ResolveDelivery(context.Background(), receipt)
	if err != nil {
		t.Fatalf("ResolveDelivery (second): %v", err)
	}
	if matched {
		t.Fatal("expected the delivery record to be consumed after its first resolve")
	}
}

func TestResolveDeliveryUnknownMessageID(t *testing.T) {
	c := newTestCorrelator(Config{})
	matched, err := c.ResolveDelivery(context.Background(), pdu.Receipt{MessageID: "never-tracked"})
	if err != nil {
		t.Fatalf("ResolveDelivery: %v", err)
	}
	if matched {
		t.Fatal("expected no match for an unknown message id")
	}
}

func TestAssembleInboundAccumulatesAndCompletes(t *testing.T) {
	c := newTestCorrelator(Config{})
	ctx := context.Background()

	text, complete, err := c.AssembleInbound(ctx, "refA", 1, 2, []byte("hello "))
	if err != nil {
		t.Fatalf("part 1: %v", err)
	}
	if complete {
		t.Fatal("expected incomplete after only 1 of 2 parts arrived")
	}
	if c.InboundAssemblyCount() != 1 {
		t.Fatalf("expected 1 in-flight assembly, got %d", c.InboundAssemblyCount())
	}

	text, complete, err = c.AssembleInbound(ctx, "refA", 2, 2, []byte("world"))
	if err != nil {
		t.Fatalf("part 2: %v", err)
	}
	if !complete {
		t.Fatal("expected complete once both parts arrived")
	}
	if string(text) != "hello world" {
		t.Fatalf("got %q, want %q", text, "hello world")
	}
	if c.InboundAssemblyCount() != 0 {
		t.Fatalf("expected the completed assembly to be evicted, got count %d", c.InboundAssemblyCount())
	}
}

func TestAssembleInboundOutOfOrderParts(t *testing.T) {
	c := newTestCorrelator(Config{})
	ctx := context.Background()

	if _, complete, err := c.AssembleInbound(ctx, "refB", 3, 3, []byte("!")); err != nil || complete {
		t.Fatalf("part 3 first: complete=%v err=%v", complete, err)
	}
	if _, complete, err := c.AssembleInbound(ctx, "refB", 1, 3, []byte("hi")); err != nil || complete {
		t.Fatalf("part 1 second: complete=%v err=%v", complete, err)
	}
	text, complete, err := c.AssembleInbound(ctx, "refB", 2, 3, []byte(" there"))
	if err != nil {
		t.Fatalf("part 2: %v", err)
	}
	if !complete {
		t.Fatal("expected completion once all 3 parts arrived regardless of order")
	}
	if string(text) != "hi there!" {
		t.Fatalf("got %q, want %q", text, "hi there!")
	}
}

func TestMarkSegmentFailedAndDiscard(t *testing.T) {
	c := newTestCorrelator(Config{})
	c.TrackSegment(1, "ref3", 1, 2)
	c.ResolveSegment(1, pdu.StatusOK)
	c.MarkSegmentFailed("ref3", 2, 2)

	cumulative, complete, ok := c.SegmentStatusFor("ref3")
	if !ok || !complete {
		t.Fatalf("expected complete status, got complete=%v ok=%v", complete, ok)
	}
	if cumulative != "FAILED" {
		t.Fatalf("got %q, want FAILED", cumulative)
	}

	c.DiscardSegments("ref3")
	if _, _, ok := c.SegmentStatusFor("ref3"); ok {
		t.Fatal("expected the discarded ref to be gone")
	}
	if c.TrackedSegmentCount() != 0 {
		t.Fatalf("expected no tracked segments after discard, got %d", c.TrackedSegmentCount())
	}
}
