package transport

import (
	"context"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
	"github.com/carlosrabelo/portkeeper/platform"
)

// SwitchAdapter implements the SwitchRepository port on top of a transport client
type SwitchAdapter struct {
	client Client
}

// NewSwitchAdapter creates a new switch adapter
func NewSwitchAdapter(client Client) *SwitchAdapter {
	return &SwitchAdapter{
		client: client,
	}
}

// Connect connects to the switch
func (s *SwitchAdapter) Connect(ctx context.Context) error {
	return s.client.Connect(ctx)
}

// Disconnect disconnects from the switch
func (s *SwitchAdapter) Disconnect() {
	s.client.Disconnect()
}

// ExecuteCommand executes a command on the switch
func (s *SwitchAdapter) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	return s.client.ExecuteCommand(ctx, cmd)
}

// IsConnected checks if connected
func (s *SwitchAdapter) IsConnected() bool {
	return s.client.IsConnected()
}

// Client is a line-oriented CLI session with a switch
type Client interface {
	Connect(ctx context.Context) error
	Disconnect()
	ExecuteCommand(ctx context.Context, cmd string) (string, error)
	IsConnected() bool
}

// AuthConfigurable allows setting authentication prompts after client creation
type AuthConfigurable interface {
	SetAuthSequence(prompts []entities.AuthPrompt)
}

// Opener opens authenticated sessions, one client per Open.
type Opener struct {
	clientFor func(entities.SwitchConfig) Client
	pool      *Pool
}

// NewOpener returns an opener with its own pool. Call Close when done.
func NewOpener() *Opener {
	pool := NewPool()
	return &Opener{clientFor: pool.Get, pool: pool}
}

// Close disconnects every session the opener created.
func (o *Opener) Close() {
	if o.pool != nil {
		o.pool.CloseAll()
	}
}

// Open connects to sw, priming the login dialogue from its platform driver
// when the platform is known up front.
func (o *Opener) Open(ctx context.Context, sw entities.SwitchConfig) (ports.SwitchRepository, error) {
	client := o.clientFor(sw)
	if configurable, ok := client.(AuthConfigurable); ok {
		if driver, err := platform.Get(sw.PlatformID()); err == nil {
			configurable.SetAuthSequence(driver.GetAuthenticationSequence(sw.Username, sw.Password, sw.EnablePassword))
		}
	}
	adapter := NewSwitchAdapter(client)
	if err := adapter.Connect(ctx); err != nil {
		return nil, err
	}
	return adapter, nil
}
