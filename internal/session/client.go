package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sagostin/go-esme/internal/admission"
	"github.com/sagostin/go-esme/internal/codec"
	"github.com/sagostin/go-esme/internal/correlator"
	"github.com/sagostin/go-esme/internal/esmeerr"
	"github.com/sagostin/go-esme/internal/logging"
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
	"github.com/sagostin/go-esme/internal/retry"
	"github.com/sagostin/go-esme/internal/sequence"
)

// ThrottleConfig configures the adaptive admission-control handler.
type ThrottleConfig struct {
	SamplingPeriod time.Duration
	SampleSize     int
	DenyRequestAt  float64
	ThrottleWait   time.Duration
}

func (c ThrottleConfig) withDefaults() ThrottleConfig {
	if c.SamplingPeriod <= 0 {
		c.SamplingPeriod = 180 * time.Second
	}
	if c.SampleSize <= 0 {
		c.SampleSize = 50
	}
	if c.DenyRequestAt <= 0 {
		c.DenyRequestAt = 0.01
	}
	if c.ThrottleWait <= 0 {
		c.ThrottleWait = 30 * time.Second
	}
	return c
}

// ClientConfig bundles everything a long-lived Client needs beyond a
// single Session's wire-level Config: text-encoding policy, the
// segmentation reference width, reconnect backoff and throttle policy.
type ClientConfig struct {
	Session            Config
	DefaultEncoding    string
	AutoMessagePayload bool
	Use16BitRef        bool
	RetryMinDelay      time.Duration
	RetryMaxIncreases  int
	Throttle           ThrottleConfig
	ClientID           string

	// OnThrottled, if set, is called every time forwardLoop defers a send
	// because the throttle handler denied it. Used by the metrics package.
	OnThrottled func()
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.RetryMinDelay <= 0 {
		c.RetryMinDelay = 1 * time.Second
	}
	if c.RetryMaxIncreases <= 0 {
		c.RetryMaxIncreases = 6
	}
	if c.ClientID == "" {
		c.ClientID = uuid.NewString()
	}
	c.Throttle = c.Throttle.withDefaults()
	return c
}

// Client owns the reconnect supervisor, the broker-drain send pipeline,
// and the convenience Send wrapper. One Client serves one configured
// bind to one SMSC.
type Client struct {
	cfg      ClientConfig
	corr     *correlator.Correlator
	hk       correlator.Hook
	broker   Broker
	registry *codec.Registry
	seq      *sequence.Sequencer
	retryT   *retry.Timer
	throttle *admission.Throttle

	curMu   sync.Mutex
	current *Session
}

// NewClient wires a Client from its collaborators. hk may be nil, in
// which case correlator.NoOpHook{} is used.
func NewClient(cfg ClientConfig, corr *correlator.Correlator, hk correlator.Hook, broker Broker, registry *codec.Registry) *Client {
	cfg = cfg.withDefaults()
	if hk == nil {
		hk = correlator.NoOpHook{}
	}
	t := cfg.Throttle
	return &Client{
		cfg:      cfg,
		corr:     corr,
		hk:       hk,
		broker:   broker,
		registry: registry,
		seq:      sequence.New(1),
		retryT:   retry.New(cfg.RetryMinDelay, cfg.RetryMaxIncreases),
		throttle: admission.NewThrottle(t.SamplingPeriod, t.SampleSize, t.DenyRequestAt, t.ThrottleWait),
	}
}

func (c *Client) setCurrent(s *Session) {
	c.curMu.Lock()
	c.current = s
	c.curMu.Unlock()
}

// Send stamps msg with a LogID if it has none and enqueues it on the
// broker; the send pipeline builds the SubmitSm (or a segmented run of
// them) when it dequeues the message. It does
// not wait for the SMSC's response; outcomes arrive asynchronously via
// the Hook contract.
func (c *Client) Send(ctx context.Context, msg message.Message) error {
	if msg.LogID == "" {
		msg.LogID = uuid.NewString()
	}
	return c.broker.Enqueue(ctx, msg)
}

// Shutdown requests a graceful unbind of the currently active session,
// if any, causing Run to return without reconnecting.
func (c *Client) Shutdown() {
	c.curMu.Lock()
	s := c.current
	c.curMu.Unlock()
	if s != nil {
		s.Shutdown()
	}
}

// State reports the current session's state, or StateClosed if no
// session is currently connected.
func (c *Client) State() State {
	c.curMu.Lock()
	s := c.current
	c.curMu.Unlock()
	if s == nil {
		return StateClosed
	}
	return s.State()
}

// Run is the supervisor loop: connect, bind, serve, and on any
// non-shutdown failure wait out the retry timer before redialing. The
// retry timer resets after any session that reached a bound state. Run
// blocks until ctx is cancelled or Shutdown is called.
func (c *Client) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		sess := newSession(c.cfg.Session, c.corr, c.hk, c.seq)
		c.setCurrent(sess)

		fwdCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.forwardLoop(fwdCtx, sess)
		}()

		err := sess.run(ctx)
		cancel()
		wg.Wait()
		c.setCurrent(nil)

		if sess.ShuttingDown() {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if sess.EverBound() {
			c.retryT.Reset()
		}
		logging.Errorf("client", err, "session ended, reconnecting in %s", c.retryT.NextDelay())
		if werr := c.retryT.Wait(ctx); werr != nil {
			return nil
		}
	}
}

// forwardLoop drains the broker and feeds each message into sess as one
// or more submit_sm PDUs, honoring the throttle handler between sends
// and reporting every terminal outcome through the Hook contract.
// A multipart submission reports at most one SendError, carrying its
// aggregated outcome, once every part has reached a terminal state.
func (c *Client) forwardLoop(ctx context.Context, sess *Session) {
	// Wait out the bind handshake so messages dequeued while the session
	// is still connecting aren't failed spuriously.
	for !sess.State().Bound() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if !c.throttle.AllowRequest() {
			if c.cfg.OnThrottled != nil {
				c.cfg.OnThrottled()
			}
			select {
			case <-time.After(c.throttle.ThrottleDelay()):
			case <-ctx.Done():
				return
			}
			continue
		}

		msg, err := c.broker.Dequeue(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logging.Errorf("client", err, "dequeue failed")
			}
			return
		}

		submits, refNum, err := buildSubmits(&msg, c.registry, c.cfg.DefaultEncoding, c.cfg.AutoMessagePayload, c.cfg.Use16BitRef)
		if err != nil {
			c.hk.SendError(msg, err)
			continue
		}

		c.hk.Sending(msg)
		var lastErr error
		for i, req := range submits {
			header, body, serr := sess.Submit(ctx, req)
			if serr != nil {
				lastErr = serr
				if refNum != "" {
					c.corr.MarkSegmentFailed(refNum, i+1, len(submits))
				} else {
					c.hk.SendError(msg, serr)
				}
				continue
			}

			if refNum != "" {
				c.corr.TrackSegment(header.Sequence, refNum, i+1, len(submits))
				c.corr.ResolveSegment(header.Sequence, header.Status)
			}
			resp, ok := body.(*pdu.SubmitSmResp)
			if !ok {
				continue
			}
			switch {
			case header.Status == pdu.StatusThrottled || header.Status == pdu.StatusMsgQFul:
				c.throttle.Throttled()
			default:
				c.throttle.NotThrottled()
			}
			if !header.Status.OK() {
				lastErr = &ProtocolStatusError{Status: header.Status}
				if refNum == "" {
					c.hk.SendError(msg, lastErr)
				}
				continue
			}
			if resp.MessageID != "" {
				if terr := c.corr.TrackDelivery(ctx, resp.MessageID, msg); terr != nil {
					logging.Errorf("client", terr, "persisting delivery record for %s", resp.MessageID)
				}
			}
		}

		if refNum != "" {
			cumulative, complete, ok := c.corr.SegmentStatusFor(refNum)
			if ok && complete {
				if cumulative != "SENT" {
					if lastErr == nil {
						lastErr = esmeerr.New(esmeerr.KindProtocolStatus, "concatenated submission ended "+cumulative, nil)
					}
					c.hk.SendError(msg, lastErr)
				}
				c.corr.DiscardSegments(refNum)
			}
		}
	}
}
