package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sagostin/go-esme/internal/correlator"
	"github.com/sagostin/go-esme/internal/correlator/store"
	"github.com/sagostin/go-esme/internal/pdu"
	"github.com/sagostin/go-esme/internal/sequence"
)

func newTestSession(t *testing.T, conn net.Conn, cfg Config) *Session {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	corr := correlator.New(correlator.Config{}, fs, fs.Segments(), correlator.NoOpHook{})
	sess := newSession(cfg, corr, correlator.NoOpHook{}, sequence.New(1))
	sess.conn = conn
	return sess
}

// relayResponses stands in for receiveLoop: reads exactly one PDU off
// conn and resolves it against the session's correlator, the same hand-
// off receiveLoop performs for every non-request PDU.
func relayResponses(t *testing.T, sess *Session, conn net.Conn) {
	t.Helper()
	header, body, err := pdu.ReadPDU(conn)
	if err != nil {
		t.Logf("relayResponses: read: %v", err)
		return
	}
	sess.corr.Resolve(header, body)
}

func TestSessionBindTransceiverSuccess(t *testing.T) {
	clientConn, smscConn := net.Pipe()
	defer clientConn.Close()
	defer smscConn.Close()

	cfg := Config{SystemID: "esme", Password: "pw", BindMode: BindModeTransceiver, BindTimeout: time.Second}
	sess := newTestSession(t, clientConn, cfg)

	go func() {
		header, _, err := pdu.ReadPDU(smscConn)
		if err != nil {
			return
		}
		_ = pdu.Encode(smscConn, &pdu.BindResp{SystemID: "smsc-1"}, header.Sequence, pdu.StatusOK)
	}()
	go relayResponses(t, sess, clientConn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sess.bind(ctx); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if sess.State() != StateBoundTRx {
		t.Fatalf("got state %s, want bound_trx", sess.State())
	}
	if !sess.EverBound() {
		t.Fatal("expected EverBound to be true after a successful bind")
	}
}

func TestSessionBindReceiverBindsBoundRx(t *testing.T) {
	clientConn, smscConn := net.Pipe()
	defer clientConn.Close()
	defer smscConn.Close()

	cfg := Config{SystemID: "esme", Password: "pw", BindMode: BindModeReceiver, BindTimeout: time.Second}
	sess := newTestSession(t, clientConn, cfg)

	go func() {
		header, body, err := pdu.ReadPDU(smscConn)
		if err != nil {
			return
		}
		if _, ok := body.(*pdu.BindReceiver); !ok {
			t.Errorf("expected bind_receiver on the wire, got %T", body)
		}
		_ = pdu.Encode(smscConn, &pdu.BindResp{SystemID: "smsc-1", RespID: pdu.BindReceiverRespID}, header.Sequence, pdu.StatusOK)
	}()
	go relayResponses(t, sess, clientConn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sess.bind(ctx); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if sess.State() != StateBoundRx {
		t.Fatalf("got state %s, want bound_rx", sess.State())
	}
}

func TestSessionBindRejected(t *testing.T) {
	clientConn, smscConn := net.Pipe()
	defer clientConn.Close()
	defer smscConn.Close()

	cfg := Config{SystemID: "esme", Password: "wrong", BindMode: BindModeTransceiver, BindTimeout: time.Second}
	sess := newTestSession(t, clientConn, cfg)

	go func() {
		header, _, err := pdu.ReadPDU(smscConn)
		if err != nil {
			return
		}
		_ = pdu.Encode(smscConn, &pdu.BindResp{}, header.Sequence, pdu.StatusInvPaswd)
	}()
	go relayResponses(t, sess, clientConn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := sess.bind(ctx)
	if err == nil {
		t.Fatal("expected bind to fail on a non-OK response")
	}
	if sess.State() == StateBoundTRx {
		t.Fatal("a rejected bind must not leave the session in a bound state")
	}
}

func TestSessionBindTimesOut(t *testing.T) {
	clientConn, smscConn := net.Pipe()
	defer clientConn.Close()
	defer smscConn.Close()

	cfg := Config{SystemID: "esme", Password: "pw", BindMode: BindModeTransceiver, BindTimeout: 20 * time.Millisecond}
	sess := newTestSession(t, clientConn, cfg)

	// Drain the bind request so the write doesn't block forever, but
	// never respond, forcing the bind timeout path.
	go func() {
		_, _, _ = pdu.ReadPDU(smscConn)
	}()

	if err := sess.bind(context.Background()); err == nil {
		t.Fatal("expected bind to time out when the SMSC never responds")
	}
}

func TestSessionUnbindOnUnboundSessionIsNoop(t *testing.T) {
	clientConn, smscConn := net.Pipe()
	defer clientConn.Close()
	defer smscConn.Close()

	cfg := Config{SystemID: "esme", Password: "pw"}
	sess := newTestSession(t, clientConn, cfg)

	if err := sess.unbind(context.Background()); err != nil {
		t.Fatalf("unbind on an unbound session should be a no-op, got %v", err)
	}
}

func TestSessionBindRejectsMismatchedResponseCommand(t *testing.T) {
	clientConn, smscConn := net.Pipe()
	defer clientConn.Close()
	defer smscConn.Close()

	cfg := Config{SystemID: "esme", Password: "pw", BindMode: BindModeTransceiver, BindTimeout: time.Second}
	sess := newTestSession(t, clientConn, cfg)

	go func() {
		header, _, err := pdu.ReadPDU(smscConn)
		if err != nil {
			return
		}
		// Answer a bind_transceiver with a bind_transmitter_resp.
		_ = pdu.Encode(smscConn, &pdu.BindResp{RespID: pdu.BindTransmitterRespID}, header.Sequence, pdu.StatusOK)
	}()
	go relayResponses(t, sess, clientConn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sess.bind(ctx); err == nil {
		t.Fatal("expected bind to fail when the response carries the wrong command id")
	}
}
