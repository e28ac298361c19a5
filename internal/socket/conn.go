package socket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lxndrdagreat/dm-display-server/internal/wire"
)

// frame is one unit of outbound work for the write pump. A non-zero
// closeCode means: write the close frame and exit.
type frame struct {
	data        []byte
	closeCode   int
	closeReason string
}

// Conn wraps a websocket connection with an identity and a buffered
// write pump. All writes go through the pump so sends from broadcast
// fan-out and from the dispatcher never interleave on the wire.
type Conn struct {
	id     uuid.UUID
	ws     *websocket.Conn
	logger *slog.Logger

	out      chan frame
	done     chan struct{}
	stopOnce sync.Once
}

func newConn(ws *websocket.Conn, logger *slog.Logger, sendBuffer int) *Conn {
	id := uuid.New()
	return &Conn{
		id:     id,
		ws:     ws,
		logger: logger.With("conn_id", id),
		out:    make(chan frame, sendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the connection's identity, used as a log correlation key.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Send marshals a message and enqueues it for the write pump. The
// enqueue never blocks: when the buffer is full the message is dropped
// and logged, so one slow peer cannot stall a session's fan-out.
func (c *Conn) Send(msg wire.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal outbound message", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.out <- frame{data: data}:
	default:
		c.logger.Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

// CloseWithCode asks the write pump to flush queued messages, send a
// close frame with the given status code, and shut the connection
// down.
func (c *Conn) CloseWithCode(code int, reason string) {
	select {
	case c.out <- frame{closeCode: code, closeReason: reason}:
	default:
		// Pump is wedged or gone; tear down directly.
		c.stop()
	}
}

// Close shuts the connection down with a normal closure code.
func (c *Conn) Close() {
	c.CloseWithCode(websocket.CloseNormalClosure, "")
}

// stop halts the write pump and closes the underlying connection. Safe
// to call more than once.
func (c *Conn) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// writeLoop is the single writer for the underlying connection. It
// exits when a close frame is requested, a write fails, or the
// connection is stopped.
func (c *Conn) writeLoop() {
	defer c.stop()

	for {
		select {
		case <-c.done:
			return
		case f := <-c.out:
			if f.data != nil {
				if err := c.ws.WriteMessage(websocket.TextMessage, f.data); err != nil {
					c.logger.Warn("write failed", "error", err)
					return
				}
			}
			if f.closeCode != 0 {
				msg := websocket.FormatCloseMessage(f.closeCode, f.closeReason)
				if err := c.ws.WriteMessage(websocket.CloseMessage, msg); err != nil {
					c.logger.Debug("write close frame failed", "error", err)
				}
				return
			}
		}
	}
}
