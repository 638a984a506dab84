package connection

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one websocket watching one game as one human
type Client struct {
	ID      string
	HumanID string
	GameID  string
	Conn    *websocket.Conn
	Send    chan []byte
}

// NewClient creates a client with a buffered outbox
func NewClient(id, humanID, gameID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:      id,
		HumanID: humanID,
		GameID:  gameID,
		Conn:    conn,
		Send:    make(chan []byte, 64),
	}
}

// Manager handles all client connections
type Manager struct {
	clients    map[string]*Client            // connection id -> client
	games      map[string]map[string]*Client // game id -> connection id -> client
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

// NewManager creates a new connection manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		games:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start processes registrations until ctx is done, then drops every client.
func (m *Manager) Start(ctx context.Context) {
	for {
		select {
		case client := <-m.Register:
			m.add(client)
		case client := <-m.Unregister:
			m.remove(client)
		case <-ctx.Done():
			close(m.done)
			m.mutex.Lock()
			for _, client := range m.clients {
				close(client.Send)
			}
			m.clients = make(map[string]*Client)
			m.games = make(map[string]map[string]*Client)
			m.mutex.Unlock()
			return
		}
	}
}

// Join registers a client. It reports false once the manager has stopped.
func (m *Manager) Join(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

// Leave unregisters a client; it never blocks after the manager has stopped.
func (m *Manager) Leave(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.clients[client.ID] = client
	watchers, ok := m.games[client.GameID]
	if !ok {
		watchers = make(map[string]*Client)
		m.games[client.GameID] = watchers
	}
	watchers[client.ID] = client
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.clients[client.ID]; !ok {
		return
	}
	delete(m.clients, client.ID)
	if watchers, ok := m.games[client.GameID]; ok {
		delete(watchers, client.ID)
		if len(watchers) == 0 {
			delete(m.games, client.GameID)
		}
	}
	close(client.Send)
}

// Watchers returns the clients currently watching a game
func (m *Manager) Watchers(gameID string) []*Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	clients := make([]*Client, 0, len(m.games[gameID]))
	for _, client := range m.games[gameID] {
		clients = append(clients, client)
	}
	return clients
}

// SendToClient queues a message for one client. It reports false when the
// client is gone or too slow to keep up; the message is dropped then.
func (m *Manager) SendToClient(clientID string, message []byte) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	client, ok := m.clients[clientID]
	if !ok {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}

// Count returns the number of connected clients
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}
