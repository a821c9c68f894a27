package push

import (
	"io"
	"sync"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla WebSocket connection to the io.ReadWriteCloser
// the STOMP client expects. Reads stream across incoming messages; each
// write becomes one outgoing message, which matches how STOMP brokers over
// WebSocket expect to receive frames.
type wsConn struct {
	ws *websocket.Conn

	readMu sync.Mutex
	reader io.Reader

	writeMu sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{
		ws:   ws,
		done: make(chan struct{}),
	}
}

// Done is closed once the underlying connection fails or is closed.
func (c *wsConn) Done() <-chan struct{} {
	return c.done
}

func (c *wsConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for {
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				c.fail()
				return 0, err
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			// Current message exhausted; move on to the next one.
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			c.fail()
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		c.fail()
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	c.fail()
	return c.ws.Close()
}

func (c *wsConn) fail() {
	c.doneOnce.Do(func() { close(c.done) })
}
