package connector

import (
	"context"
	"errors"
	"fmt"
)

// ErrServerNotFound is returned when no server matches a lookup
var ErrServerNotFound = errors.New("server not found")

type Connector interface {
	ListServers(ctx context.Context) ([]Server, error)
	GetServerByID(ctx context.Context, id string) (Server, error)
	GetServerByName(ctx context.Context, name string) (Server, error)
	CreateServer(ctx context.Context, req CreateRequest) (Server, error)
}

type Server interface {
	GetID() string
	GetName() string
	GetState(ctx context.Context) (State, error)
	// Details returns the descriptor captured when the server was fetched.
	Details() Details
	Reboot(ctx context.Context) error
	Delete(ctx context.Context) error
	String() string
}

// NotFound wraps ErrServerNotFound with the name or ID that was looked up
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrServerNotFound, what)
}
