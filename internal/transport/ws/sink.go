package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/errors"
)

// Sink adapts one websocket connection to the distributor. Outbound frames go
// through a bounded queue drained by a single writer goroutine, so Send never
// blocks the distributor and all connection writes stay on one goroutine.
type Sink struct {
	id           string
	conn         *websocket.Conn
	out          chan any
	writeTimeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

var _ market.SubscriberSink = (*Sink)(nil)

// NewSink wraps an upgraded connection and starts its writer goroutine.
func NewSink(id string, conn *websocket.Conn, queueSize int, writeTimeout time.Duration) *Sink {
	s := &Sink{
		id:           id,
		conn:         conn,
		out:          make(chan any, queueSize),
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	go s.writeLoop()

	return s
}

// ID returns the connection id.
func (s *Sink) ID() string {
	return s.id
}

// Send queues an update for delivery. It fails immediately when the queue is
// full or the connection is closed, which lets the distributor evict slow
// consumers instead of stalling on them.
func (s *Sink) Send(update *v1.Update) error {
	return s.enqueue(update)
}

func (s *Sink) enqueue(frame any) error {
	select {
	case <-s.closed:
		return errors.NewErrorDetails("subscriber connection closed", string(errors.DistributionFailureError), s.id)
	default:
	}

	select {
	case s.out <- frame:
		return nil
	default:
		return errors.NewErrorDetails("subscriber queue full", string(errors.DistributionFailureError), s.id)
	}
}

// Close stops the writer and closes the connection. Safe to call more than
// once.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		deadline := time.Now().Add(s.writeTimeout)
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
	})
	<-s.done

	return nil
}

func (s *Sink) writeLoop() {
	defer close(s.done)

	for {
		select {
		case frame := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteJSON(frame); err != nil {
				// The read loop notices the dead connection and drops
				// the subscriber.
				_ = s.conn.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}
