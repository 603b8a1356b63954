package ws

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/interval"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/util"
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// clientRequest is an inbound control frame from a subscriber.
type clientRequest struct {
	Action    string `json:"action"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

// controlFrame acknowledges a client request or reports a request error.
type controlFrame struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
	Error string `json:"error,omitempty"`
}

// Handler upgrades subscriber connections and relays their subscribe and
// unsubscribe requests to the bar stream.
type Handler struct {
	config    config.WSConfig
	queueSize int
	logger    logger.Interface
	stream    market.BarStream
	upgrader  websocket.Upgrader
}

// NewHandler creates the subscriber websocket handler.
func NewHandler(cfg config.WSConfig, distributorCfg config.DistributorConfig, log logger.Interface, stream market.BarStream) *Handler {
	return &Handler{
		config:    cfg,
		queueSize: distributorCfg.SubscriberQueue,
		logger:    log,
		stream:    stream,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection and runs its read loop until the client
// disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade subscriber connection", logger.Field{Key: "error", Value: err.Error()})
		return
	}

	id := util.NewConnectionID()
	sink := NewSink(id, conn, h.queueSize, h.config.WriteTimeout)

	h.logger.Info("subscriber connected", logger.Field{Key: "connection_id", Value: id})

	defer func() {
		h.stream.Drop(id)
		_ = sink.Close()
		h.logger.Info("subscriber disconnected", logger.Field{Key: "connection_id", Value: id})
	}()

	for {
		var req clientRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("subscriber connection lost",
					logger.Field{Key: "connection_id", Value: id},
					logger.Field{Key: "error", Value: err.Error()},
				)
			}
			return
		}

		h.handleRequest(sink, &req)
	}
}

func (h *Handler) handleRequest(sink *Sink, req *clientRequest) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		_ = sink.enqueue(&controlFrame{Type: "error", Error: "symbol is required"})
		return
	}

	timeframe, err := interval.GetTimeframe(req.Timeframe)
	if err != nil {
		_ = sink.enqueue(&controlFrame{Type: "error", Error: err.Error()})
		return
	}
	topic := v1.Topic(symbol, timeframe.Name)

	switch req.Action {
	case actionSubscribe:
		if err := h.stream.Subscribe(sink, symbol, timeframe.Name); err != nil {
			_ = sink.enqueue(&controlFrame{Type: "error", Topic: topic, Error: err.Error()})
			return
		}
		_ = sink.enqueue(&controlFrame{Type: "subscribed", Topic: topic})
	case actionUnsubscribe:
		h.stream.Unsubscribe(sink.ID(), symbol, timeframe.Name)
		_ = sink.enqueue(&controlFrame{Type: "unsubscribed", Topic: topic})
	default:
		_ = sink.enqueue(&controlFrame{Type: "error", Error: "unknown action: " + req.Action})
	}
}
