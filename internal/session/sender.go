package session

import (
	"context"

	"github.com/sagostin/go-esme/internal/logging"
	"github.com/sagostin/go-esme/internal/pdu"
)

// sendLoop serializes every PDU queued by Submit onto the wire in
// dequeue order. Transport errors here are fatal to the session; the
// caller waiting on Submit's ready channel always gets the outcome.
func (s *Session) sendLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.sendCh:
			err := s.writePDU(job.pdu, job.seq, pdu.StatusOK)
			job.ready <- err
			if err != nil {
				logging.Errorf("session", err, "writing pdu seq=%d", job.seq)
				return err
			}
		}
	}
}
