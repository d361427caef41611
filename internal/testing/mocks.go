package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRemote is a testify mock of the fleet remote transport.
type MockRemote struct {
	mock.Mock
}

// Run mocks running a command on host.
func (m *MockRemote) Run(ctx context.Context, host, command string) (string, error) {
	args := m.Called(ctx, host, command)
	return args.String(0), args.Error(1)
}

// Copy mocks copying localPath to remotePath on host.
func (m *MockRemote) Copy(ctx context.Context, host, localPath, remotePath string) error {
	args := m.Called(ctx, host, localPath, remotePath)
	return args.Error(0)
}

// Login mocks an interactive session on host.
func (m *MockRemote) Login(ctx context.Context, host string) error {
	args := m.Called(ctx, host)
	return args.Error(0)
}
