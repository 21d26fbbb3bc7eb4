package ports

import (
	"context"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

// SwitchRepository defines the port for network switch interaction
type SwitchRepository interface {
	Connect(ctx context.Context) error
	Disconnect()
	ExecuteCommand(ctx context.Context, cmd string) (string, error)
	IsConnected() bool
}

// SessionOpener establishes an authenticated command session to a switch.
type SessionOpener interface {
	Open(ctx context.Context, sw entities.SwitchConfig) (SwitchRepository, error)
}

// Resolver gates a target on hostname resolution.
type Resolver interface {
	Resolves(ctx context.Context, host string) bool
}
