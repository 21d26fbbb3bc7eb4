package transport

import (
	"strings"
	"sync"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

// Pool tracks the clients handed out during a run and closes them together.
// Every Get dials a fresh client; sessions are never shared between callers.
type Pool struct {
	mu      sync.Mutex
	clients []Client
	dial    func(entities.SwitchConfig) Client
}

// NewPool returns an empty pool creating telnet or SSH clients.
func NewPool() *Pool {
	return &Pool{dial: newClient}
}

// Get returns a new client for cfg.
func (p *Pool) Get(cfg entities.SwitchConfig) Client {
	client := p.dial(cfg)
	p.mu.Lock()
	p.clients = append(p.clients, client)
	p.mu.Unlock()
	return client
}

// Len reports the number of tracked clients.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// CloseAll disconnects and forgets every client.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	clients := p.clients
	p.clients = nil
	p.mu.Unlock()

	for _, client := range clients {
		client.Disconnect()
	}
}

func newClient(cfg entities.SwitchConfig) Client {
	if normalizeTransport(cfg.Transport) == "ssh" {
		return NewSSHClient(cfg)
	}
	return NewTelnetClient(cfg)
}

func normalizeTransport(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
