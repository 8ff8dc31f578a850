package notify

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types published while a synchronization run progresses
const (
	EventSyncStart    = "sync_start"
	EventSyncProgress = "sync_progress"
	EventSyncWarning  = "sync_warning"
	EventSyncComplete = "sync_complete"
	EventConnected    = "connected"
)

// Event is one server-sent progress event
type Event struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	Account   string `json:"account,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time
func NewEvent(eventType, message string) Event {
	return Event{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Connection is one registered event stream. Events holds buffered progress
// events; a full buffer drops instead of blocking the publisher.
type Connection struct {
	ID     string
	UserID string
	Events chan Event
}

// Registry fans progress events out to the event streams of a user.
// It is safe for concurrent use and holds no global state: handlers and
// workers receive it by injection.
type Registry struct {
	mu         sync.RWMutex
	conns      map[string]*Connection
	bufferSize int
	logger     *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithBufferSize sets the per-connection event buffer
func WithBufferSize(size int) Option {
	return func(r *Registry) { r.bufferSize = size }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		conns:      make(map[string]*Connection),
		bufferSize: 64,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register opens a connection for a user. The connection id is derived from
// the user id and the registration instant, so one user can hold several
// streams at once. The "connected" event is queued before Register returns,
// guaranteeing it is the first event the subscriber reads.
func (r *Registry) Register(userID string) *Connection {
	conn := &Connection{
		ID:     fmt.Sprintf("%s-%d", userID, time.Now().UnixMilli()),
		UserID: userID,
		Events: make(chan Event, r.bufferSize),
	}
	conn.Events <- NewEvent(EventConnected, "Conexão estabelecida")

	r.mu.Lock()
	// Collisions are possible when the same user registers twice within a
	// millisecond; suffix until unique.
	for i := 0; ; i++ {
		if _, exists := r.conns[conn.ID]; !exists {
			break
		}
		conn.ID = fmt.Sprintf("%s-%d-%d", userID, time.Now().UnixMilli(), i)
	}
	r.conns[conn.ID] = conn
	r.mu.Unlock()

	r.logger.Debug("progress stream registered",
		zap.String("connection_id", conn.ID),
		zap.String("user_id", userID))
	return conn
}

// Unregister removes a connection and closes its channel. Calling it twice,
// or with an unknown id, is a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	close(conn.Events)
	r.logger.Debug("progress stream unregistered", zap.String("connection_id", connID))
}

// Publish delivers an event to every open connection of the user. Publishing
// with no connections registered is a valid no-op: sync runs do not depend on
// anyone watching. Slow consumers have events dropped rather than blocking
// the worker.
func (r *Registry) Publish(userID string, event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().Format(time.RFC3339)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, conn := range r.conns {
		if conn.UserID != userID {
			continue
		}
		select {
		case conn.Events <- event:
		default:
			r.logger.Warn("progress buffer full, dropping event",
				zap.String("connection_id", conn.ID),
				zap.String("event_type", event.Type))
		}
	}
}

// ConnectionCount returns the number of open connections for a user
func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, conn := range r.conns {
		if conn.UserID == userID {
			n++
		}
	}
	return n
}
