// Package metrics exposes this client's Prometheus instrumentation:
// counters incremented at the call sites that produce them, plus a
// Collector that queries live session/correlator state on every scrape
// instead of caching it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sagostin/go-esme/internal/correlator"
	"github.com/sagostin/go-esme/internal/message"
	"github.com/sagostin/go-esme/internal/pdu"
	"github.com/sagostin/go-esme/internal/session"
)

// PDUsSent and PDUsReceived count wire traffic by command name.
var (
	PDUsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "esme_pdus_sent_total",
		Help: "PDUs written to the SMSC connection, by command.",
	}, []string{"command"})

	PDUsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "esme_pdus_received_total",
		Help: "PDUs read from the SMSC connection, by command.",
	}, []string{"command"})

	SendsAdmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esme_sends_admitted_total",
		Help: "Outbound messages that passed admission control.",
	})

	SendsDenied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esme_sends_denied_total",
		Help: "Outbound messages delayed by the throttle handler.",
	})

	SendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esme_send_errors_total",
		Help: "Submissions that ended in a send_error hook callback.",
	})

	DeliveryReports = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esme_delivery_reports_total",
		Help: "Delivery receipts matched back to a tracked submission.",
	})
)

func init() {
	prometheus.MustRegister(PDUsSent, PDUsReceived, SendsAdmitted, SendsDenied, SendErrors, DeliveryReports)
}

// Collector reports gauges that only make sense as a live snapshot: the
// session's bind state and the depth of each correlator table. Register
// it once per Client with prometheus.MustRegister.
type Collector struct {
	client *session.Client
	corr   *correlator.Correlator

	state           *prometheus.Desc
	outstanding     *prometheus.Desc
	trackedSegments *prometheus.Desc
	inboundAssembly *prometheus.Desc
}

// NewCollector builds a Collector over the given Client and Correlator.
func NewCollector(client *session.Client, corr *correlator.Correlator) *Collector {
	return &Collector{
		client: client,
		corr:   corr,
		state: prometheus.NewDesc("esme_session_state", "Current session state (0=closed..4=bound_trx).",
			nil, nil),
		outstanding: prometheus.NewDesc("esme_correlator_outstanding_requests",
			"Requests awaiting a response.", nil, nil),
		trackedSegments: prometheus.NewDesc("esme_correlator_tracked_segments",
			"Outbound concatenated submissions in flight.", nil, nil),
		inboundAssembly: prometheus.NewDesc("esme_correlator_inbound_assemblies",
			"Inbound concatenated messages awaiting remaining parts.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.outstanding
	ch <- c.trackedSegments
	ch <- c.inboundAssembly
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(c.client.State()))
	ch <- prometheus.MustNewConstMetric(c.outstanding, prometheus.GaugeValue, float64(c.corr.OutstandingCount()))
	ch <- prometheus.MustNewConstMetric(c.trackedSegments, prometheus.GaugeValue, float64(c.corr.TrackedSegmentCount()))
	ch <- prometheus.MustNewConstMetric(c.inboundAssembly, prometheus.GaugeValue, float64(c.corr.InboundAssemblyCount()))
}

// HookCounter wraps a correlator.Hook, incrementing SendsAdmitted,
// SendErrors and DeliveryReports around calls to the wrapped hook.
type HookCounter struct {
	Next correlator.Hook
}

func (h HookCounter) Sending(msg message.Message) {
	SendsAdmitted.Inc()
	h.Next.Sending(msg)
}

func (h HookCounter) Received(msg message.Message) {
	h.Next.Received(msg)
}

func (h HookCounter) SendError(msg message.Message, err error) {
	SendErrors.Inc()
	h.Next.SendError(msg, err)
}

func (h HookCounter) DeliveryReport(rec pdu.Receipt, original message.Message) {
	DeliveryReports.Inc()
	h.Next.DeliveryReport(rec, original)
}

// CommandName maps a CommandID to the label value PDUsSent/PDUsReceived
// are keyed by.
func CommandName(id pdu.CommandID) string {
	switch id {
	case pdu.BindTransmitterID, pdu.BindTransmitterRespID:
		return "bind_transmitter"
	case pdu.BindReceiverID, pdu.BindReceiverRespID:
		return "bind_receiver"
	case pdu.BindTransceiverID, pdu.BindTransceiverRespID:
		return "bind_transceiver"
	case pdu.SubmitSmID, pdu.SubmitSmRespID:
		return "submit_sm"
	case pdu.DeliverSmID, pdu.DeliverSmRespID:
		return "deliver_sm"
	case pdu.UnbindID, pdu.UnbindRespID:
		return "unbind"
	case pdu.EnquireLinkID, pdu.EnquireLinkRespID:
		return "enquire_link"
	case pdu.GenericNackID:
		return "generic_nack"
	default:
		return "unknown"
	}
}

// OnPDUSent and OnPDUReceived are ready-made session.Config callbacks that
// count traffic through PDUsSent/PDUsReceived by command name.
func OnPDUSent(id pdu.CommandID)     { PDUsSent.WithLabelValues(CommandName(id)).Inc() }
func OnPDUReceived(id pdu.CommandID) { PDUsReceived.WithLabelValues(CommandName(id)).Inc() }

// OnThrottled is a ready-made session.ClientConfig callback that counts a
// deferred send through SendsDenied.
func OnThrottled() { SendsDenied.Inc() }
