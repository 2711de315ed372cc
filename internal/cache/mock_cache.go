package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error {
	args := m.Called(ctx, key, summary, ttl)
	return args.Error(0)
}

func (m *MockCache) SetProgress(ctx context.Context, docID uuid.UUID, fraction float64, ttl time.Duration) error {
	args := m.Called(ctx, docID, fraction, ttl)
	return args.Error(0)
}

func (m *MockCache) GetProgress(ctx context.Context, docID uuid.UUID) (float64, bool, error) {
	args := m.Called(ctx, docID)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
