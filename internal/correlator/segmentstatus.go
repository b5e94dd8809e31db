package correlator

import "github.com/sagostin/go-esme/internal/pdu"

// segmentState is the per-part outcome tracked in the outbound segment
// registry. Raw SMSC status codes sort below the three terminal
// sentinels so that aggregating a ref's parts with max() always yields
// the right cumulative status: any part still sending holds the whole
// message at SENDING, any failure or expiry beats a bare SENT, and a
// submit_sm_resp error code never outranks a definite terminal state.
type segmentState uint32

const (
	segmentSent segmentState = 1<<31 + iota
	segmentExpired
	segmentFailed
	segmentSending
)

func (s segmentState) String() string {
	switch s {
	case segmentSending:
		return "SENDING"
	case segmentFailed:
		return "FAILED"
	case segmentExpired:
		return "EXPIRED"
	case segmentSent:
		return "SENT"
	default:
		return pdu.Status(s).String()
	}
}

// SegmentStatus is the cumulative status of a concatenated-SMS submission,
// aggregated across every part's individual outcome.
type SegmentStatus struct {
	RefNum     string
	Total      int
	partStatus map[int]segmentState
}

func newSegmentStatus(refNum string, total int) *SegmentStatus {
	return &SegmentStatus{RefNum: refNum, Total: total, partStatus: make(map[int]segmentState, total)}
}

func (s *SegmentStatus) set(seq int, st segmentState) {
	s.partStatus[seq] = st
}

// Complete reports whether every part has reached a terminal state.
func (s *SegmentStatus) Complete() bool {
	for seq := 1; seq <= s.Total; seq++ {
		st, ok := s.partStatus[seq]
		if !ok || st == segmentSending {
			return false
		}
	}
	return true
}

// Cumulative returns the worst-case status across all parts, per the
// SENDING > FAILED > EXPIRED > SENT > raw-error-code ordering.
func (s *SegmentStatus) Cumulative() segmentState {
	var worst segmentState
	for seq := 1; seq <= s.Total; seq++ {
		st, ok := s.partStatus[seq]
		if !ok {
			st = segmentSending
		}
		if st > worst {
			worst = st
		}
	}
	return worst
}
