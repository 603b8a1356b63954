package bootstrap

import (
	"github.com/mytechsonamy/crypto-stock-platform/internal/transport/ws"
)

// Transport holds the subscriber-facing endpoints.
type Transport struct {
	WSHandler *ws.Handler
}

// registerTransport registers the subscriber websocket endpoint.
func (b *Bootstrap) registerTransport() {
	if !b.Config.WS.Enabled {
		return
	}

	b.Transport.WSHandler = ws.NewHandler(b.Config.WS, b.Config.Distributor, b.Logger, b.Processing.Distributor)
}
