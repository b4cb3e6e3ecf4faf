package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

// MockConnector is a test implementation of the Connector interface
type MockConnector struct {
	mu      sync.Mutex
	servers map[string]*MockServer
	nextID  int

	// Error injection
	listErr   error
	lookupErr error
	createErr error

	// bootPolls is how many GetState calls a created server stays pending for
	bootPolls int

	lastCreate connector.CreateRequest
}

// NewMockConnector creates a new mock connector
func NewMockConnector() *MockConnector {
	return &MockConnector{
		servers: make(map[string]*MockServer),
		nextID:  1,
	}
}

// AddServer registers an existing server
func (m *MockConnector) AddServer(d connector.Details) *MockServer {
	m.mu.Lock()
	defer m.mu.Unlock()

	server := &MockServer{details: d}
	m.servers[d.ID] = server
	return server
}

// CreateServer creates a mock server in pending state
func (m *MockConnector) CreateServer(ctx context.Context, req connector.CreateRequest) (connector.Server, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCreate = req
	if m.createErr != nil {
		return nil, m.createErr
	}

	id := fmt.Sprintf("i-mock%04d", m.nextID)
	m.nextID++

	server := &MockServer{
		details: connector.Details{
			ID:           id,
			Name:         req.Name,
			State:        connector.StatePending,
			KeyPair:      req.KeyPair,
			InstanceType: req.InstanceType,
		},
		pendingPolls: m.bootPolls,
		bootIP:       fmt.Sprintf("10.0.0.%d", m.nextID-1),
	}
	m.servers[id] = server

	return server, nil
}

// ListServers returns all servers
func (m *MockConnector) ListServers(ctx context.Context) ([]connector.Server, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var servers []connector.Server
	for _, server := range m.servers {
		servers = append(servers, server)
	}
	return servers, nil
}

// GetServerByID retrieves a server by ID
func (m *MockConnector) GetServerByID(ctx context.Context, serverID string) (connector.Server, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	server, exists := m.servers[serverID]
	if !exists {
		return nil, connector.NotFound(serverID)
	}
	return server, nil
}

// GetServerByName retrieves a server by its name
func (m *MockConnector) GetServerByName(ctx context.Context, name string) (connector.Server, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, server := range m.servers {
		if server.GetName() == name {
			return server, nil
		}
	}
	return nil, connector.NotFound(name)
}

// MockServer is a test implementation of the Server interface
type MockServer struct {
	mu           sync.Mutex
	details      connector.Details
	pendingPolls int
	bootIP       string

	rebootErr error
	deleteErr error
	rebooted  int
	deleted   bool
}

// GetID returns the server ID
func (s *MockServer) GetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details.ID
}

// GetName returns the server name
func (s *MockServer) GetName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details.Name
}

// Details returns a copy of the descriptor
func (s *MockServer) Details() connector.Details {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details
}

// GetState returns the current state, booting pending servers after pendingPolls calls
func (s *MockServer) GetState(ctx context.Context) (connector.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.details.State == connector.StatePending {
		if s.pendingPolls > 0 {
			s.pendingPolls--
		} else {
			s.details.State = connector.StateRunning
			if s.bootIP != "" {
				s.details.PrivateIPs = []string{s.bootIP}
			}
		}
	}
	return s.details.State, nil
}

// Reboot records the request
func (s *MockServer) Reboot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rebootErr != nil {
		return s.rebootErr
	}
	s.rebooted++
	return nil
}

// Delete marks the server as terminated
func (s *MockServer) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	if s.deleted {
		return fmt.Errorf("server already deleted")
	}
	s.deleted = true
	s.details.State = connector.StateTerminated
	return nil
}

// String returns a string representation
func (s *MockServer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("MockServer{id=%s, name=%s, state=%s}", s.details.ID, s.details.Name, s.details.State)
}

var _ connector.Connector = (*MockConnector)(nil)
var _ connector.Server = (*MockServer)(nil)
