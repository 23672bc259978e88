package progress

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultSocketIOEvent is the event name progress events are emitted under.
const DefaultSocketIOEvent = "workflow:progress"

// socketIOBacklogWarn is the backlog size at which the sink warns once that
// the server is not keeping up.
const socketIOBacklogWarn = 256

// SocketIO streams events to a socket.io namespace. Report never blocks and
// never drops: events wait in an unbounded FIFO that a background goroutine
// drains in order.
type SocketIO struct {
	logger  *slog.Logger
	event   string
	emit    func(event string, payload map[string]any)
	closeFn func()

	mu        sync.Mutex
	cond      *sync.Cond
	pending   []Event
	closed    bool
	warned    bool
	done      chan struct{}
	closeOnce sync.Once
}

// DialSocketIO connects to rawURL (scheme, host and optional socket.io path)
// and joins namespace. An empty event name uses DefaultSocketIOEvent.
func DialSocketIO(rawURL, namespace, event string, logger *slog.Logger) (*SocketIO, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse socket.io URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL '%s' must include scheme and host", rawURL)
	}
	if namespace == "" {
		namespace = "/"
	}
	if event == "" {
		event = DefaultSocketIOEvent
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	logger = logger.With("sink", "socketio", "url", baseURL, "namespace", namespace)
	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Progress stream connected.", "sid", io.Id())
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Progress stream connection failed.", "error", errs)
	})
	io.Connect()

	return newSocketIO(event, logger,
		func(ev string, payload map[string]any) { io.Emit(ev, payload) },
		func() { io.Disconnect() },
	), nil
}

func newSocketIO(event string, logger *slog.Logger, emit func(string, map[string]any), closeFn func()) *SocketIO {
	s := &SocketIO{
		logger:  logger,
		event:   event,
		emit:    emit,
		closeFn: closeFn,
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

func (s *SocketIO) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, e := range batch {
			s.emit(s.event, eventPayload(e))
		}
	}
}

func (s *SocketIO) Report(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("Progress event reported after close, ignoring.", "kind", e.Kind)
		return
	}
	s.pending = append(s.pending, e)
	if len(s.pending) >= socketIOBacklogWarn && !s.warned {
		s.warned = true
		s.logger.Warn("Progress stream is falling behind.", "backlog", len(s.pending))
	}
	s.cond.Signal()
}

// Backlog is the number of events reported but not yet handed to the socket.
func (s *SocketIO) Backlog() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close emits every queued event and then disconnects.
func (s *SocketIO) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.cond.Broadcast()
		s.mu.Unlock()

		<-s.done
		if s.closeFn != nil {
			s.closeFn()
		}
	})
	return nil
}

func eventPayload(e Event) map[string]any {
	payload := map[string]any{
		"run_id":    e.RunID,
		"kind":      string(e.Kind),
		"severity":  e.Severity.String(),
		"message":   e.Message,
		"timestamp": e.Time.UnixMilli(),
	}
	if e.NodeID != "" {
		payload["node_id"] = e.NodeID
	}
	if e.Detail != "" {
		payload["detail"] = e.Detail
	}
	return payload
}
