// Package session implements the ESME-side connection lifecycle: dialing
// the SMSC, binding, exchanging PDUs, keeping the link alive, and
// reconnecting with backoff when the link drops.
package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sagostin/go-esme/internal/admission"
	"github.com/sagostin/go-esme/internal/correlator"
	"github.com/sagostin/go-esme/internal/logging"
	"github.com/sagostin/go-esme/internal/pdu"
	"github.com/sagostin/go-esme/internal/sequence"
)

// State is one of the five session states: closed, open (connected but
// not bound), and the three bound variants.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateBoundTx
	StateBoundRx
	StateBoundTRx
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateBoundTx:
		return "bound_tx"
	case StateBoundRx:
		return "bound_rx"
	case StateBoundTRx:
		return "bound_trx"
	default:
		return "unknown"
	}
}

func (s State) Bound() bool {
	return s == StateBoundTx || s == StateBoundRx || s == StateBoundTRx
}

// BindMode selects which bind PDU the client sends on connect. Each mode
// maps to the bound state its bind command carries on the wire:
// bind_receiver binds BOUND_RX and restricts the session to inbound
// deliver_sm traffic.
type BindMode int

const (
	BindModeTransceiver BindMode = iota
	BindModeTransmitter
	BindModeReceiver
)

func (m BindMode) bindPDU(body pdu.BindBody) pdu.PDU {
	switch m {
	case BindModeTransmitter:
		return &pdu.BindTransmitter{BindBody: body}
	case BindModeReceiver:
		return &pdu.BindReceiver{BindBody: body}
	default:
		return &pdu.BindTransceiver{BindBody: body}
	}
}

func (m BindMode) boundState() State {
	switch m {
	case BindModeTransmitter:
		return StateBoundTx
	case BindModeReceiver:
		return StateBoundRx
	default:
		return StateBoundTRx
	}
}

// Config carries everything a Session needs to dial, bind and run.
type Config struct {
	Addr             string
	SystemID         string
	Password         string
	SystemType       string
	AddrTON          pdu.TON
	AddrNPI          pdu.NPI
	AddressRange     string
	BindMode         BindMode
	BindTimeout      time.Duration
	EnquireInterval  time.Duration
	EnquireTimeout   time.Duration
	ReadTimeout      time.Duration
	DialTimeout      time.Duration
	ReconnectMinWait time.Duration
	ReconnectMaxStep int
	SendRatePerSec   float64

	// OnPDUSent and OnPDUReceived, if set, are called for every PDU
	// written to or read from the wire. Used by the metrics package to
	// count traffic by command without this package depending on it.
	OnPDUSent     func(pdu.CommandID)
	OnPDUReceived func(pdu.CommandID)
}

func (c Config) withDefaults() Config {
	if c.BindTimeout <= 0 {
		c.BindTimeout = 10 * time.Second
	}
	if c.EnquireInterval <= 0 {
		c.EnquireInterval = 30 * time.Second
	}
	if c.EnquireTimeout <= 0 {
		c.EnquireTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.ReconnectMinWait <= 0 {
		c.ReconnectMinWait = 1 * time.Second
	}
	if c.ReconnectMaxStep <= 0 {
		c.ReconnectMaxStep = 6
	}
	if c.SendRatePerSec <= 0 {
		c.SendRatePerSec = 10
	}
	return c
}

var (
	ErrNotBound     = errors.New("session: not bound")
	ErrBindRejected = errors.New("session: bind rejected by SMSC")
	ErrClosed       = errors.New("session: closed")
)

// Session owns one live TCP connection to the SMSC and the three
// concurrent tasks (receiver, sender, keeper) that serve it. A Session
// handles exactly one connect/bind/unbind cycle; Client wraps it with
// the reconnect loop.
type Session struct {
	cfg   Config
	hk    correlator.Hook
	corr  *correlator.Correlator
	seq   *sequence.Sequencer
	limit *admission.RateLimiter

	mu        sync.Mutex
	state     State
	everBound bool
	conn      net.Conn

	writeMu sync.Mutex

	sendCh     chan sendJob
	dataCh     chan struct{}
	done       chan struct{}
	closeDone  sync.Once
	shutdownCh chan struct{}
}

type sendJob struct {
	pdu   pdu.PDU
	seq   uint32
	ready chan error
}

func newSession(cfg Config, corr *correlator.Correlator, hk correlator.Hook, seq *sequence.Sequencer) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		cfg:        cfg,
		corr:       corr,
		hk:         hk,
		seq:        seq,
		limit:      admission.NewRateLimiter(cfg.SendRatePerSec),
		sendCh:     make(chan sendJob, 64),
		dataCh:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// notifyData signals the keeper that a PDU was just read off the wire,
// so it can skip sending an enquire_link this interval. Non-blocking:
// the channel only needs to carry "something happened", not every event.
func (s *Session) notifyData() {
	select {
	case s.dataCh <- struct{}{}:
	default:
	}
}

// writePDU serializes conn writes across the sender, keeper and the
// receiver's own responses, so no two goroutines interleave partial PDU
// bytes on the wire. Each write runs under the socket timeout.
func (s *Session) writePDU(p pdu.PDU, seq uint32, status pdu.Status) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.ReadTimeout))
	err := pdu.Encode(s.conn, p, seq, status)
	if err == nil && s.cfg.OnPDUSent != nil {
		s.cfg.OnPDUSent(p.CommandID())
	}
	return err
}

// Shutdown requests a graceful unbind: the running bound cycle sends
// unbind, waits for unbind_resp, and tears down without triggering a
// reconnect. Safe to call from any goroutine.
func (s *Session) Shutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
}

// ShuttingDown reports whether Shutdown has been called.
func (s *Session) ShuttingDown() bool {
	select {
	case <-s.shutdownCh:
		return true
	default:
		return false
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	if st.Bound() {
		s.everBound = true
	}
	s.mu.Unlock()
	logging.Infof("session", "state transition to %s", st)
}

// EverBound reports whether this session reached a bound state at least
// once, used by the supervisor to decide whether a disconnect counts as
// a successful-then-broken session (reset backoff) or a failed dial
// (keep backing off).
func (s *Session) EverBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.everBound
}

// run dials, binds, and serves the connection until it drops or ctx is
// cancelled. It blocks until the session is fully torn down.
func (s *Session) run(ctx context.Context) error {
	defer s.closeDone.Do(func() { close(s.done) })

	dialer := net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("session: dial %s: %w", s.cfg.Addr, err)
	}
	s.conn = conn
	s.setState(StateOpen)
	defer conn.Close()

	if err := s.bind(ctx); err != nil {
		return err
	}

	// The shutdown goroutine below needs a cancel it can call directly
	// (on a graceful unbind); errgroup.WithContext derives its own
	// cancellation from shutdownCtx, so the three tasks see either path.
	shutdownCtx, shutdownCancel := context.WithCancel(ctx)
	defer shutdownCancel()

	g, runCtx := errgroup.WithContext(shutdownCtx)
	g.Go(func() error { return s.receiveLoop(runCtx) })
	g.Go(func() error { return s.sendLoop(runCtx) })
	g.Go(func() error { return s.keepLoop(runCtx) })

	go func() {
		select {
		case <-s.shutdownCh:
			unbindCtx, unbindCancel := context.WithTimeout(ctx, 5*time.Second)
			_ = s.unbind(unbindCtx)
			unbindCancel()
			shutdownCancel()
		case <-runCtx.Done():
		}
	}()

	runErr := g.Wait()
	s.setState(StateClosed)
	if s.ShuttingDown() {
		return nil
	}
	return runErr
}

func (s *Session) bind(ctx context.Context) error {
	req := s.cfg.BindMode.bindPDU(pdu.BindBody{
		SystemID:         s.cfg.SystemID,
		Password:         s.cfg.Password,
		SystemType:       s.cfg.SystemType,
		InterfaceVersion: 0x34,
		AddrTon:          s.cfg.AddrTON,
		AddrNpi:          s.cfg.AddrNPI,
		AddressRange:     s.cfg.AddressRange,
	})
	bindCtx, cancel := context.WithTimeout(ctx, s.cfg.BindTimeout)
	defer cancel()

	seqNum := s.seq.Next()
	resultCh := s.corr.Await(seqNum, req)
	if err := s.writePDU(req, seqNum, pdu.StatusOK); err != nil {
		return fmt.Errorf("session: encoding bind: %w", err)
	}
	select {
	case res := <-resultCh:
		if res.Err != nil {
			return res.Err
		}
		expected := pdu.CommandID(uint32(req.CommandID()) | 0x80000000)
		if res.Header.CommandID != expected {
			return fmt.Errorf("%w: unexpected response command 0x%08x", ErrBindRejected, uint32(res.Header.CommandID))
		}
		if !res.Header.Status.OK() {
			return fmt.Errorf("%w: %s", ErrBindRejected, res.Header.Status)
		}
		s.setState(s.cfg.BindMode.boundState())
		return nil
	case <-bindCtx.Done():
		return fmt.Errorf("session: bind timed out: %w", bindCtx.Err())
	}
}

// unbind sends unbind and waits (briefly) for unbind_resp before the
// connection is torn down, for a graceful shutdown.
func (s *Session) unbind(ctx context.Context) error {
	if !s.State().Bound() {
		return nil
	}
	seqNum := s.seq.Next()
	resultCh := s.corr.Await(seqNum, &pdu.Unbind{})
	if err := s.writePDU(&pdu.Unbind{}, seqNum, pdu.StatusOK); err != nil {
		return err
	}
	select {
	case <-resultCh:
	case <-ctx.Done():
	}
	return nil
}

// Submit hands a constructed request PDU to the sender task and waits
// for the matching response, honoring admission control and sequence
// allocation. Used for submit_sm; also reusable for enquire_link.
func (s *Session) Submit(ctx context.Context, req pdu.PDU) (pdu.Header, pdu.PDU, error) {
	if !s.State().Bound() && req.CommandID() != pdu.EnquireLinkID {
		return pdu.Header{}, nil, ErrNotBound
	}
	if err := s.limit.Limit(ctx); err != nil {
		return pdu.Header{}, nil, err
	}
	seqNum := s.seq.Next()
	resultCh := s.corr.Await(seqNum, req)
	ready := make(chan error, 1)
	select {
	case s.sendCh <- sendJob{pdu: req, seq: seqNum, ready: ready}:
	case <-ctx.Done():
		return pdu.Header{}, nil, ctx.Err()
	case <-s.done:
		return pdu.Header{}, nil, ErrClosed
	}
	select {
	case err := <-ready:
		if err != nil {
			return pdu.Header{}, nil, err
		}
	case <-ctx.Done():
		return pdu.Header{}, nil, ctx.Err()
	case <-s.done:
		return pdu.Header{}, nil, ErrClosed
	}
	select {
	case res := <-resultCh:
		return res.Header, res.Body, res.Err
	case <-ctx.Done():
		return pdu.Header{}, nil, ctx.Err()
	}
}
