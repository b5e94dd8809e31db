package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sagostin/go-esme/internal/esmeerr"
	"github.com/sagostin/go-esme/internal/pdu"
)

// ErrDeadLink is returned when nothing arrives from the peer within
// EnquireTimeout of a sent enquire_link; the link is considered dead and
// the session torn down for the supervisor to redial.
var ErrDeadLink = esmeerr.New(esmeerr.KindTimeout, "enquire_link timed out, link considered dead", nil)

// keepLoop waits for either the enquire_link interval to elapse or the
// "data received" signal from the receiver; on interval expiry it sends
// enquire_link and requires some inbound PDU (its own enquire_link_resp
// or anything else the receiver reads) within EnquireTimeout.
func (s *Session) keepLoop(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.EnquireInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.dataCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.cfg.EnquireInterval)
		case <-timer.C:
			s.corr.Sweep(ctx)
			enquireCtx, cancel := context.WithTimeout(ctx, s.cfg.EnquireTimeout)
			errCh := make(chan error, 1)
			go func() {
				_, _, serr := s.Submit(enquireCtx, &pdu.EnquireLink{})
				errCh <- serr
			}()
			var err error
			select {
			case <-s.dataCh:
			case err = <-errCh:
			}
			cancel()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrDeadLink, err)
			}
			timer.Reset(s.cfg.EnquireInterval)
		}
	}
}
