// Package correlator matches outbound requests to their responses,
// outbound submissions to their delivery receipts, and inbound
// concatenated-SMS parts to their assembled whole, across reconnects
// and process restarts.
package correlator

import (
	"context"
	"sync"
	"time"

	"github.com/sagostin/go-esme/internal/correlator/store"
	"github.com/sagostin/go-esme/internal/logging"
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
)

// outstandingRequest is a request PDU waiting for its response, keyed by
// the sequence number it was sent under.
type outstandingRequest struct {
	storedAt time.Time
	seq      uint32
	pdu      pdu.PDU
	resultCh chan RequestResult
}

// RequestResult is delivered on the channel returned by Await: either
// the matching response PDU, or Err set to ErrRequestTimeout if the
// request was swept before one arrived.
type RequestResult struct {
	Header pdu.Header
	Body   pdu.PDU
	Err    error
}

// inboundAssembly tracks the parts of an inbound concatenated message
// that have arrived so far, mirrored into a SegmentStore so a restart
// mid-assembly doesn't lose the parts that already arrived.
type inboundAssembly struct {
	storedAt time.Time
	total    int
	parts    map[int][]byte
}

// Config bounds how long an entry may live in each table before it is
// swept as expired.
type Config struct {
	RequestTTL  time.Duration // default 60s, matches the enquire_link-scale response window
	DeliveryTTL time.Duration // default 72h, per max_ttl_delivery
	AssemblyTTL time.Duration // default 24h, for orphaned concatenated-SMS parts
}

func (c Config) withDefaults() Config {
	if c.RequestTTL <= 0 {
		c.RequestTTL = 60 * time.Second
	}
	if c.DeliveryTTL <= 0 {
		c.DeliveryTTL = 72 * time.Hour
	}
	if c.AssemblyTTL <= 0 {
		c.AssemblyTTL = 24 * time.Hour
	}
	return c
}

// Correlator owns the four tables described in the session engine's
// request/response and delivery-matching contract. All methods are
// safe for concurrent use.
type Correlator struct {
	cfg Config
	hk  Hook

	mu          sync.Mutex
	outstanding map[uint32]*outstandingRequest
	segments    map[string]*SegmentStatus // outbound, by ref_num
	seqToRef    map[uint32]segmentLoc     // outbound seq -> (ref_num, segment_seq)

	deliveries store.DeliveryStore
	assembly   store.SegmentStore

	assemblyMu    sync.Mutex
	assemblyCache map[string]*inboundAssembly
}

type segmentLoc struct {
	refNum string
	seq    int
}

// New builds a Correlator backed by deliveries for the delivery map and
// assembly for the inbound segment-assembly table. hk receives the
// DeliveryReport callback for each matched receipt; a nil hk is
// replaced with NoOpHook{}.
func New(cfg Config, deliveries store.DeliveryStore, assembly store.SegmentStore, hk Hook) *Correlator {
	if hk == nil {
		hk = NoOpHook{}
	}
	return &Correlator{
		cfg:           cfg.withDefaults(),
		hk:            hk,
		outstanding:   make(map[uint32]*outstandingRequest),
		segments:      make(map[string]*SegmentStatus),
		seqToRef:      make(map[uint32]segmentLoc),
		deliveries:    deliveries,
		assembly:      assembly,
		assemblyCache: make(map[string]*inboundAssembly),
	}
}

// --- table 1: outstanding requests -----------------------------------

// Await registers seq as awaiting a response and returns a channel that
// receives exactly one RequestResult: the matching response, or an error
// if the request is swept as expired first.
func (c *Correlator) Await(seq uint32, req pdu.PDU) <-chan RequestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepOutstandingLocked()
	ch := make(chan RequestResult, 1)
	c.outstanding[seq] = &outstandingRequest{storedAt: time.Now(), seq: seq, pdu: req, resultCh: ch}
	return ch
}

// Resolve matches an inbound response PDU against its outstanding
// request by sequence number. Reports false if no request is waiting
// under that sequence (a late or duplicate response).
func (c *Correlator) Resolve(header pdu.Header, body pdu.PDU) bool {
	c.mu.Lock()
	c.sweepOutstandingLocked()
	req, ok := c.outstanding[header.Sequence]
	if ok {
		delete(c.outstanding, header.Sequence)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	req.resultCh <- RequestResult{Header: header, Body: body}
	close(req.resultCh)
	return true
}

// sweepOutstandingLocked drops every entry older than RequestTTL and
// delivers ErrRequestTimeout on its result channel, so a waiting
// submitter (the client's send pipeline) reports it through the hook's
// SendError rather than staying silent; a tracked segment is marked
// expired. Must be called with c.mu held.
func (c *Correlator) sweepOutstandingLocked() {
	cutoff := time.Now().Add(-c.cfg.RequestTTL)
	for seq, req := range c.outstanding {
		if req.storedAt.After(cutoff) {
			continue
		}
		delete(c.outstanding, seq)
		req.resultCh <- RequestResult{Err: ErrRequestTimeout}
		close(req.resultCh)
		if loc, ok := c.seqToRef[seq]; ok {
			c.markSegmentLocked(loc.refNum, loc.seq, segmentExpired)
		}
	}
}

// Sweep runs the periodic whole-table TTL pass across every table. The
// session keeper calls this on a timer alongside enquire_link.
func (c *Correlator) Sweep(ctx context.Context) {
	c.mu.Lock()
	c.sweepOutstandingLocked()
	c.mu.Unlock()

	if c.deliveries != nil {
		expired, err := c.deliveries.SweepExpired(ctx, c.cfg.DeliveryTTL)
		if err != nil {
			logging.Errorf("correlator", err, "delivery sweep failed")
		}
		for range expired {
			// Expired deliveries mean the receipt never arrived; there is
			// no original Message recoverable at this point, only the
			// wire-level record, so no Hook callback fires here.
		}
	}
	if c.assembly != nil {
		expired, err := c.assembly.SweepExpired(ctx, c.cfg.AssemblyTTL)
		if err != nil {
			logging.Errorf("correlator", err, "assembly sweep failed")
		}
		c.assemblyMu.Lock()
		for _, rec := range expired {
			delete(c.assemblyCache, rec.RefNum)
		}
		c.assemblyMu.Unlock()
	}
}

// OutstandingCount reports the current size of the outstanding-request
// table, for metrics.
func (c *Correlator) OutstandingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outstanding)
}

// TrackedSegmentCount reports how many outbound concatenated submissions
// are currently tracked, for metrics.
func (c *Correlator) TrackedSegmentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.segments)
}

// InboundAssemblyCount reports how many inbound concatenated messages are
// currently awaiting their remaining parts, for metrics.
func (c *Correlator) InboundAssemblyCount() int {
	c.assemblyMu.Lock()
	defer c.assemblyMu.Unlock()
	return len(c.assemblyCache)
}

// --- table 2: outbound segment registry ------------------------------

// TrackSegment registers one part of an outbound concatenated message
// under seq, associating it with refNum/segSeq/total so its status can
// be aggregated later via SegmentStatusFor.
func (c *Correlator) TrackSegment(seq uint32, refNum string, segSeq, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.segments[refNum]
	if !ok {
		st = newSegmentStatus(refNum, total)
		c.segments[refNum] = st
	}
	st.set(segSeq, segmentSending)
	c.seqToRef[seq] = segmentLoc{refNum: refNum, seq: segSeq}
}

func (c *Correlator) markSegmentLocked(refNum string, seq int, st segmentState) {
	s, ok := c.segments[refNum]
	if !ok {
		return
	}
	s.set(seq, st)
}

// ResolveSegment records the outcome of one part's submit_sm_resp.
func (c *Correlator) ResolveSegment(seq uint32, status pdu.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.seqToRef[seq]
	if !ok {
		return
	}
	st := segmentFailed
	if status.OK() {
		st = segmentSent
	}
	c.markSegmentLocked(loc.refNum, loc.seq, st)
}

// MarkSegmentFailed records a part that never made it onto the wire, or
// whose submission failed before a response could be correlated.
func (c *Correlator) MarkSegmentFailed(refNum string, segSeq, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.segments[refNum]
	if !ok {
		st = newSegmentStatus(refNum, total)
		c.segments[refNum] = st
	}
	st.set(segSeq, segmentFailed)
}

// DiscardSegments drops a completed concatenated submission from the
// registry once its aggregated outcome has been reported.
func (c *Correlator) DiscardSegments(refNum string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.segments, refNum)
	for seq, loc := range c.seqToRef {
		if loc.refNum == refNum {
			delete(c.seqToRef, seq)
		}
	}
}

// SegmentStatusFor returns the aggregated status of a concatenated
// submission and whether every part has reached a terminal state.
func (c *Correlator) SegmentStatusFor(refNum string) (cumulative string, complete bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, found := c.segments[refNum]
	if !found {
		return "", false, false
	}
	return s.Cumulative().String(), s.Complete(), true
}

// --- table 3: delivery map (message_id -> submit) --------------------

// TrackDelivery records msg (keyed by the SMSC-assigned message id) so a
// later delivery receipt can be matched back to it, even across a
// process restart.
func (c *Correlator) TrackDelivery(ctx context.Context, msgID string, msg message.Message) error {
	rec := store.DeliveryRecord{
		MessageID:   msgID,
		StoredAt:    time.Now(),
		Source:      msg.Source.Number,
		Destination: msg.Destination.Number,
		Text:        []byte(msg.Text),
		LogID:       msg.LogID,
		ExtraData:   msg.ExtraData,
	}
	return c.deliveries.Put(ctx, rec)
}

// ResolveDelivery matches an inbound delivery receipt against its
// original submission and invokes the hook's DeliveryReport callback.
// Reports false if no submission is on file for that message id (it may
// have already expired, or the SMSC's message id may not be one we
// assigned).
func (c *Correlator) ResolveDelivery(ctx context.Context, receipt pdu.Receipt) (bool, error) {
	rec, ok, err := c.deliveries.Get(ctx, receipt.MessageID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := c.deliveries.Delete(ctx, receipt.MessageID); err != nil {
		return false, err
	}
	original := message.Message{
		Source:      pdu.PhoneNumber{Number: rec.Source},
		Destination: pdu.PhoneNumber{Number: rec.Destination},
		Text:        string(rec.Text),
		LogID:       rec.LogID,
		ExtraData:   rec.ExtraData,
	}
	c.hk.DeliveryReport(receipt, original)
	return true, nil
}

// --- table 4: inbound segment assembly --------------------------------

// AssembleInbound folds one inbound part into its concatenated message
// and reports the whole text once every part has arrived. complete is
// false (and text empty) while parts remain outstanding.
func (c *Correlator) AssembleInbound(ctx context.Context, refNum string, seq, total int, part []byte) (text []byte, complete bool, err error) {
	c.assemblyMu.Lock()
	asm, ok := c.assemblyCache[refNum]
	if !ok {
		if rec, found, gerr := c.assembly.Get(ctx, refNum); gerr == nil && found {
			asm = &inboundAssembly{storedAt: rec.StoredAt, total: rec.Total, parts: rec.Parts}
		} else {
			asm = &inboundAssembly{storedAt: time.Now(), total: total, parts: make(map[int][]byte)}
		}
		c.assemblyCache[refNum] = asm
	}
	asm.parts[seq] = part
	snapshot := make(map[int][]byte, len(asm.parts))
	for k, v := range asm.parts {
		snapshot[k] = v
	}
	storedAt := asm.storedAt
	c.assemblyMu.Unlock()

	rec := store.SegmentRecord{RefNum: refNum, StoredAt: storedAt, Total: total, Parts: snapshot}
	if err := c.assembly.Put(ctx, rec); err != nil {
		return nil, false, err
	}

	if len(snapshot) < total {
		return nil, false, nil
	}
	var whole []byte
	for i := 1; i <= total; i++ {
		whole = append(whole, snapshot[i]...)
	}
	c.assemblyMu.Lock()
	delete(c.assemblyCache, refNum)
	c.assemblyMu.Unlock()
	if err := c.assembly.Delete(ctx, refNum); err != nil {
		return whole, true, err
	}
	return whole, true, nil
}
