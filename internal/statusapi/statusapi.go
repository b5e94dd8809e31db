// Package statusapi exposes a small introspection HTTP surface over the
// running client: liveness, a JSON status snapshot and the Prometheus
// scrape endpoint.
package statusapi

import (
	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagostin/go-esme/internal/correlator"
	"github.com/sagostin/go-esme/internal/session"
)

// StatusResponse is the /status snapshot body.
type StatusResponse struct {
	ClientID            string `json:"client_id"`
	State               string `json:"state"`
	OutstandingRequests int    `json:"outstanding_requests"`
	TrackedSegments     int    `json:"tracked_segments"`
	InboundAssemblies   int    `json:"inbound_assemblies"`
}

// New builds an iris.Application serving /healthz, /status and /metrics
// for client over corr. addr is not bound here; call app.Listen(addr)
// from the caller so tests can serve the app through net/http/httptest.
func New(clientID string, client *session.Client, corr *correlator.Correlator) *iris.Application {
	app := iris.New()

	app.Get("/healthz", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	app.Get("/status", func(ctx iris.Context) {
		ctx.JSON(StatusResponse{
			ClientID:            clientID,
			State:               client.State().String(),
			OutstandingRequests: corr.OutstandingCount(),
			TrackedSegments:     corr.TrackedSegmentCount(),
			InboundAssemblies:   corr.InboundAssemblyCount(),
		})
	})

	app.Get("/metrics", iris.FromStd(promhttp.Handler()))

	return app
}
