package push

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"
)

// GlobalTopic is the cross-project destination carrying every task event.
const GlobalTopic = "/topic/tasks"

// ProjectTopic returns the destination scoped to a single project.
func ProjectTopic(projectID int) string {
	return fmt.Sprintf("/topic/projects/%d/tasks", projectID)
}

// defaultReconnectDelay is used when the source is configured with a
// non-positive delay.
const defaultReconnectDelay = 5 * time.Second

// Handler receives decoded push events for one subscription.
type Handler func(Event)

// Source maintains one logical STOMP-over-WebSocket connection to the
// broker and hands out topic subscriptions. Reconnection after an
// unexpected drop is automatic; subscriptions do not survive a drop, so
// the onConnect callback fires on every successful (re)connect and
// interested parties re-subscribe there.
type Source struct {
	brokerURL      string
	reconnectDelay time.Duration

	mu           sync.Mutex
	conn         *stomp.Conn
	active       bool
	stopCh       chan struct{}
	onConnect    func()
	onDisconnect func(error)
}

// NewSource creates a Source for a broker WebSocket URL
// (e.g. ws://host:8080/stomp/websocket).
func NewSource(brokerURL string, reconnectDelay time.Duration) *Source {
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	return &Source{
		brokerURL:      brokerURL,
		reconnectDelay: reconnectDelay,
	}
}

// Connect starts the connection lifecycle. Calling it while already active
// is a no-op, so there is at most one logical connection per Source.
// onConnect fires on the initial connect and on every reconnect;
// onDisconnect (optional, diagnostic) fires when the connection drops or a
// dial attempt fails.
func (s *Source) Connect(onConnect func(), onDisconnect func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.onConnect = onConnect
	s.onDisconnect = onDisconnect

	go s.run(s.stopCh)
}

// Disconnect tears down the connection and all outstanding subscriptions.
// Idempotent.
func (s *Source) Disconnect() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		// Closes the broker session; subscription channels drain and
		// their reader goroutines exit.
		_ = conn.Disconnect()
	}
}

// Connected reports whether a broker session is currently established.
func (s *Source) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// SubscribeProject delivers every event on the given project's topic to
// the handler. Returns a no-op subscription when not connected.
func (s *Source) SubscribeProject(projectID int, handler Handler) *Subscription {
	return s.subscribe(ProjectTopic(projectID), handler)
}

// SubscribeGlobal delivers every event across all projects to the handler.
// Returns a no-op subscription when not connected.
func (s *Source) SubscribeGlobal(handler Handler) *Subscription {
	return s.subscribe(GlobalTopic, handler)
}

func (s *Source) subscribe(destination string, handler Handler) *Subscription {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return noopSubscription(destination)
	}

	stompSub, err := conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		log.Printf("push: subscribing to %s: %v", destination, err)
		return noopSubscription(destination)
	}

	go deliver(destination, stompSub, handler)

	return &Subscription{
		destination: destination,
		cancel: func() {
			_ = stompSub.Unsubscribe()
		},
	}
}

// deliver decodes messages off a STOMP subscription until its channel
// closes. Malformed payloads are logged and dropped; they never reach the
// handler or tear the loop down.
func deliver(destination string, stompSub *stomp.Subscription, handler Handler) {
	for msg := range stompSub.C {
		if msg == nil {
			return
		}
		if msg.Err != nil {
			// Connection-level failure; the reconnect loop handles it.
			return
		}
		evt, err := DecodeEvent(msg.Body)
		if err != nil {
			log.Printf("push: dropping payload on %s: %v", destination, err)
			continue
		}
		handler(evt)
	}
}

// run owns the dial/reconnect loop for the lifetime of one Connect call.
func (s *Source) run(stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		ws, _, err := websocket.DefaultDialer.Dial(s.brokerURL, nil)
		if err != nil {
			s.notifyDisconnect(fmt.Errorf("dialing broker: %w", err))
			if !s.sleep(stopCh) {
				return
			}
			continue
		}

		rwc := newWSConn(ws)
		conn, err := stomp.Connect(rwc, stomp.ConnOpt.HeartBeat(0, 0))
		if err != nil {
			rwc.Close()
			s.notifyDisconnect(fmt.Errorf("stomp handshake: %w", err))
			if !s.sleep(stopCh) {
				return
			}
			continue
		}

		s.mu.Lock()
		if !s.active {
			// Disconnect raced the dial; drop the fresh session.
			s.mu.Unlock()
			_ = conn.Disconnect()
			rwc.Close()
			return
		}
		s.conn = conn
		onConnect := s.onConnect
		s.mu.Unlock()

		if onConnect != nil {
			onConnect()
		}

		select {
		case <-stopCh:
			_ = conn.Disconnect()
			rwc.Close()
			return
		case <-rwc.Done():
			s.mu.Lock()
			s.conn = nil
			s.mu.Unlock()
			s.notifyDisconnect(fmt.Errorf("connection lost"))
			if !s.sleep(stopCh) {
				return
			}
		}
	}
}

// sleep waits one reconnect interval, returning false if the source was
// stopped while waiting.
func (s *Source) sleep(stopCh chan struct{}) bool {
	select {
	case <-stopCh:
		return false
	case <-time.After(s.reconnectDelay):
		return true
	}
}

func (s *Source) notifyDisconnect(err error) {
	s.mu.Lock()
	onDisconnect := s.onDisconnect
	s.mu.Unlock()

	if onDisconnect != nil {
		onDisconnect(err)
	}
}
