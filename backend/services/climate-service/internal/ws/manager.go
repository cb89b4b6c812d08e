package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager tracks live viewer connections.
type Manager struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	pingInterval time.Duration
}

// NewManager builds connection manager.
func NewManager(pingInterval time.Duration) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Manager{
		connections:  make(map[string]*Connection),
		pingInterval: pingInterval,
	}
}

// NewID returns a fresh viewer id.
func (m *Manager) NewID() string {
	return uuid.NewString()
}

// PingInterval is how often viewers are pinged.
func (m *Manager) PingInterval() time.Duration {
	return m.pingInterval
}

// Add registers new connection.
func (m *Manager) Add(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ID()] = conn
}

// Remove removes connection.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, id)
}

// Count returns the number of connected viewers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast queues msg for every viewer and returns how many accepted it.
func (m *Manager) Broadcast(msg []byte) int {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.connections))
	for _, conn := range m.connections {
		conns = append(conns, conn)
	}
	m.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if conn.Send(msg) {
			delivered++
		}
	}
	return delivered
}

// CloseAll disconnects every viewer.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.connections))
	for _, conn := range m.connections {
		conns = append(conns, conn)
	}
	m.mu.RUnlock()

	for _, conn := range conns {
		conn.Close()
	}
}
