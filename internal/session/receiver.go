package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sagostin/go-esme/internal/esmeerr"
	"github.com/sagostin/go-esme/internal/logging"
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
)

// ErrPeerUnbind ends the receive loop when the SMSC requests an unbind;
// the supervisor treats it as an ordinary disconnect and redials.
var ErrPeerUnbind = esmeerr.New(esmeerr.KindTransport, "peer requested unbind", nil)

// receiveLoop reads PDUs off the wire until the connection errors or ctx
// is cancelled. Responses are handed to the correlator; requests
// (deliver_sm, enquire_link, unbind) are handled inline and acked. A
// malformed PDU whose bytes were still fully consumed is answered with
// generic_nack and the loop keeps reading; the loop ends on a transport
// failure, an inbound unbind (ErrPeerUnbind) or ctx cancellation.
func (s *Session) receiveLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// The deadline spans one keep-alive cycle: if the keeper's
		// enquire_link can't coax any bytes out of the peer in that
		// window, the read failing is the correct outcome.
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.EnquireInterval + 2*s.cfg.ReadTimeout))
		header, body, err := pdu.ReadPDU(s.conn)
		if err != nil {
			if pdu.IsParseError(err) {
				logging.Warnf("session", "malformed pdu seq=%d: %v", header.Sequence, err)
				if pdu.IsRequest(header.CommandID) {
					_ = s.writePDU(&pdu.GenericNack{}, header.Sequence, pdu.StatusInvCmdID)
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				logging.Infof("session", "connection closed by peer")
			} else {
				logging.Errorf("session", err, "reading pdu")
			}
			return err
		}
		s.notifyData()
		if s.cfg.OnPDUReceived != nil {
			s.cfg.OnPDUReceived(header.CommandID)
		}

		if pdu.IsRequest(header.CommandID) {
			if done := s.handleRequest(ctx, header, body); done {
				return ErrPeerUnbind
			}
			continue
		}
		if !s.corr.Resolve(header, body) {
			logging.Warnf("session", "unmatched response for sequence %d command 0x%X", header.Sequence, uint32(header.CommandID))
		}
	}
}

// handleRequest answers one inbound request. done reports that the peer
// asked to unbind and the loop should end.
func (s *Session) handleRequest(ctx context.Context, header pdu.Header, body pdu.PDU) (done bool) {
	switch req := body.(type) {
	case *pdu.DeliverSm:
		s.handleDeliverSm(ctx, header, req)
	case *pdu.EnquireLink:
		_ = s.writePDU(&pdu.EnquireLinkResp{}, header.Sequence, pdu.StatusOK)
	case *pdu.Unbind:
		_ = s.writePDU(&pdu.UnbindResp{}, header.Sequence, pdu.StatusOK)
		s.setState(StateClosed)
		return true
	default:
		_ = s.writePDU(&pdu.GenericNack{}, header.Sequence, pdu.StatusInvCmdID)
	}
	return false
}

func (s *Session) handleDeliverSm(ctx context.Context, header pdu.Header, req *pdu.DeliverSm) {
	if req.IsReceipt() {
		receipt := pdu.ParseReceipt(req.Text())
		if receipt.MessageID == "" {
			receipt.MessageID = receiptedMessageID(req.OptionalParams)
		}
		if _, err := s.corr.ResolveDelivery(ctx, receipt); err != nil {
			logging.Errorf("session", err, "resolving delivery receipt for message %s", receipt.MessageID)
		}
		_ = s.writePDU(&pdu.DeliverSmResp{}, header.Sequence, pdu.StatusOK)
		return
	}

	ref, seq, total, ok := udhFromDeliverSm(req)
	if !ok {
		s.hk.Received(message.Message{
			Source:      req.Source,
			Destination: req.Destination,
			Text:        string(req.Text()),
		})
		_ = s.writePDU(&pdu.DeliverSmResp{}, header.Sequence, pdu.StatusOK)
		return
	}

	whole, complete, err := s.corr.AssembleInbound(ctx, ref, seq, total, stripUDH(req.Text()))
	if err != nil {
		logging.Errorf("session", err, "assembling inbound segment ref=%s", ref)
	}
	if complete {
		s.hk.Received(message.Message{
			Source:      req.Source,
			Destination: req.Destination,
			Text:        string(whole),
		})
	}
	_ = s.writePDU(&pdu.DeliverSmResp{}, header.Sequence, pdu.StatusOK)
}

// receiptedMessageID falls back to the receipted_message_id TLV when the
// receipt text itself carries no id field.
func receiptedMessageID(params []pdu.TLV) string {
	for _, t := range params {
		if t.Tag == pdu.TagReceiptedMessageID {
			v := t.Value
			if n := len(v); n > 0 && v[n-1] == 0 {
				v = v[:n-1]
			}
			return string(v)
		}
	}
	return ""
}
