package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
)

const brokerTimeout = 5 * time.Second

// Broker is an in-process STOMP-over-WebSocket endpoint. It completes the
// CONNECT handshake, answers receipts, and records subscriptions, which is
// enough to exercise the push layer's connection lifecycle: tests publish
// MESSAGE frames through a session or drop its socket to provoke a
// reconnect.
type Broker struct {
	server   *httptest.Server
	sessions chan *BrokerSession
}

// NewBroker starts a broker that shuts down when the test completes.
func NewBroker(t *testing.T) *Broker {
	t.Helper()

	b := &Broker{sessions: make(chan *BrokerSession, 8)}
	upgrader := websocket.Upgrader{}

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		session := newBrokerSession(ws)
		if !session.handshake() {
			ws.Close()
			return
		}
		b.sessions <- session
		session.serve()
	}))
	t.Cleanup(b.server.Close)

	return b
}

// URL returns the broker's WebSocket address.
func (b *Broker) URL() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http")
}

// AcceptSession waits for the next client connection to complete its
// handshake.
func (b *Broker) AcceptSession(t *testing.T) *BrokerSession {
	t.Helper()

	select {
	case s := <-b.sessions:
		return s
	case <-time.After(brokerTimeout):
		t.Fatal("no broker session established")
		return nil
	}
}

// TryAcceptSession reports whether a client connected within the window.
// Used to assert that a stopped source does not dial again.
func (b *Broker) TryAcceptSession(window time.Duration) (*BrokerSession, bool) {
	select {
	case s := <-b.sessions:
		return s, true
	case <-time.After(window):
		return nil, false
	}
}

// BrokerSession is one accepted client connection.
type BrokerSession struct {
	ws     *websocket.Conn
	reader *frame.Reader
	writer *frame.Writer

	writeMu sync.Mutex

	mu            sync.Mutex
	subscriptions map[string]string // destination -> subscription id
	unsubscribed  map[string]bool   // subscription id -> true

	closed    chan struct{}
	messageID int
}

func newBrokerSession(ws *websocket.Conn) *BrokerSession {
	stream := &wsStream{ws: ws}
	return &BrokerSession{
		ws:            ws,
		reader:        frame.NewReader(stream),
		writer:        frame.NewWriter(stream),
		subscriptions: make(map[string]string),
		unsubscribed:  make(map[string]bool),
		closed:        make(chan struct{}),
	}
}

// handshake consumes the client's CONNECT frame and confirms the session.
func (s *BrokerSession) handshake() bool {
	f, err := s.reader.Read()
	if err != nil || f == nil {
		return false
	}
	if f.Command != frame.CONNECT && f.Command != frame.STOMP {
		return false
	}
	return s.send(frame.New(frame.CONNECTED,
		frame.Version, "1.2",
		frame.HeartBeat, "0,0")) == nil
}

// serve reads frames until the socket drops. Any frame asking for a receipt
// gets one; SUBSCRIBE and UNSUBSCRIBE are recorded for the test to inspect.
func (s *BrokerSession) serve() {
	defer close(s.closed)

	for {
		f, err := s.reader.Read()
		if err != nil {
			return
		}
		if f == nil {
			// Heartbeat.
			continue
		}

		if receipt, ok := f.Header.Contains(frame.Receipt); ok {
			if s.send(frame.New(frame.RECEIPT, frame.ReceiptId, receipt)) != nil {
				return
			}
		}

		switch f.Command {
		case frame.SUBSCRIBE:
			destination, _ := f.Header.Contains(frame.Destination)
			id, _ := f.Header.Contains(frame.Id)
			s.mu.Lock()
			s.subscriptions[destination] = id
			s.mu.Unlock()
		case frame.UNSUBSCRIBE:
			id, _ := f.Header.Contains(frame.Id)
			s.mu.Lock()
			s.unsubscribed[id] = true
			s.mu.Unlock()
		}
	}
}

// WaitSubscribe blocks until the client subscribes to the destination and
// returns the subscription id to publish against.
func (s *BrokerSession) WaitSubscribe(t *testing.T, destination string) string {
	t.Helper()

	deadline := time.Now().Add(brokerTimeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		id, ok := s.subscriptions[destination]
		s.mu.Unlock()
		if ok {
			return id
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no subscription to %s", destination)
	return ""
}

// WaitUnsubscribe blocks until the client drops the given subscription.
func (s *BrokerSession) WaitUnsubscribe(t *testing.T, subscriptionID string) {
	t.Helper()

	deadline := time.Now().Add(brokerTimeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		gone := s.unsubscribed[subscriptionID]
		s.mu.Unlock()
		if gone {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("subscription %s never unsubscribed", subscriptionID)
}

// Publish delivers a MESSAGE frame to the given subscription.
func (s *BrokerSession) Publish(t *testing.T, subscriptionID, destination, body string) {
	t.Helper()

	s.mu.Lock()
	s.messageID++
	id := s.messageID
	s.mu.Unlock()

	f := frame.New(frame.MESSAGE,
		frame.Subscription, subscriptionID,
		frame.Destination, destination,
		frame.MessageId, fmt.Sprintf("msg-%d", id),
		frame.ContentType, "application/json")
	f.Body = []byte(body)

	if err := s.send(f); err != nil {
		t.Fatalf("publishing to %s: %v", destination, err)
	}
}

// Drop kills the socket without any STOMP goodbye, as a crashed broker
// would.
func (s *BrokerSession) Drop() {
	s.ws.Close()
}

// WaitClosed blocks until the session's socket is gone.
func (s *BrokerSession) WaitClosed(t *testing.T) {
	t.Helper()

	select {
	case <-s.closed:
	case <-time.After(brokerTimeout):
		t.Fatal("session never closed")
	}
}

func (s *BrokerSession) send(f *frame.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writer.Write(f)
}

// wsStream adapts the server side of a WebSocket connection to the
// io.ReadWriter the frame codec expects. Reads stream across incoming
// messages; each write becomes one outgoing message.
type wsStream struct {
	ws *websocket.Conn

	readMu sync.Mutex
	reader io.Reader

	writeMu sync.Mutex
}

func (c *wsStream) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for {
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				return 0, err
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsStream) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
