package gateway

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// connBuffer is the per-connection event buffer. A connection that falls
// this far behind starts dropping events; the REST catch-up path is the
// correctness backstop.
const connBuffer = 32

// Conn is one live connection handle for one user. A user with several
// devices holds several Conns.
type Conn struct {
	ID     string
	UserID uint
	ch     chan Event
}

// Events returns the channel the transport handler drains.
func (c *Conn) Events() <-chan Event {
	return c.ch
}

// Registry is the presence tracker: it maps user identity to the set of
// live connection handles and fans events out per connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint]map[string]*Conn
	log   *slog.Logger
}

// NewRegistry returns an empty connection registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		conns: make(map[uint]map[string]*Conn),
		log:   log,
	}
}

// Register adds a live connection for the user and returns its handle.
func (r *Registry) Register(userID uint) *Conn {
	c := &Conn{
		ID:     uuid.NewString(),
		UserID: userID,
		ch:     make(chan Event, connBuffer),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[userID] == nil {
		r.conns[userID] = make(map[string]*Conn)
	}
	r.conns[userID][c.ID] = c
	r.log.Debug("connection registered", "user", userID, "conn", c.ID)
	return c
}

// Unregister removes a connection and closes its event channel. Safe to
// call once per connection; Broadcast never writes to a removed connection.
func (r *Registry) Unregister(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c.ID]; !ok {
		return
	}
	delete(set, c.ID)
	if len(set) == 0 {
		delete(r.conns, c.UserID)
	}
	close(c.ch)
	r.log.Debug("connection unregistered", "user", c.UserID, "conn", c.ID)
}

// Connections reports how many live connections a user currently holds.
func (r *Registry) Connections(userID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// Broadcast queues the event on every live connection of every recipient
// and returns how many connections accepted it. A full buffer drops the
// event for that connection; the client reconciles over REST.
func (r *Registry) Broadcast(ev Event, recipients []uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, userID := range recipients {
		for _, c := range r.conns[userID] {
			select {
			case c.ch <- ev:
				delivered++
			default:
				r.log.Warn("dropping event for slow connection",
					"type", ev.Type, "user", userID, "conn", c.ID)
			}
		}
	}
	return delivered
}
