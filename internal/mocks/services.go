package mocks

import (
	"context"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/service"
)

// MockIdentityResolver is a mock implementation of IdentityResolver.
// Tokens maps a credential to the actor it resolves to.
type MockIdentityResolver struct {
	ResolveFunc func(ctx context.Context, credential string) (models.Actor, error)
	Tokens      map[string]models.Actor
}

// Verify interface compliance
var _ service.IdentityResolver = (*MockIdentityResolver)(nil)

func NewMockIdentityResolver() *MockIdentityResolver {
	return &MockIdentityResolver{Tokens: make(map[string]models.Actor)}
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, credential string) (models.Actor, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, credential)
	}
	if credential == "" {
		return models.Anonymous, nil
	}
	actor, ok := m.Tokens[credential]
	if !ok {
		return models.Anonymous, models.ErrInvalidCredential
	}
	return actor, nil
}

// MockSystemService is a mock implementation of SystemService
type MockSystemService struct {
	HealthErr error
	StatsErr  error
	Counts    models.Stats
}

// Verify interface compliance
var _ service.SystemService = (*MockSystemService)(nil)

func NewMockSystemService() *MockSystemService {
	return &MockSystemService{}
}

func (m *MockSystemService) Stats(ctx context.Context) (*models.Stats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	stats := m.Counts
	return &stats, nil
}

func (m *MockSystemService) Health(ctx context.Context) error {
	return m.HealthErr
}

// MockSettingService is a mock implementation of SettingService
type MockSettingService struct {
	GetFunc func(ctx context.Context, key string) (*models.Setting, error)
	PutFunc func(ctx context.Context, actor models.Actor, key, value string) (*models.Setting, error)
	Values  map[string]string
	Puts    []string
}

// Verify interface compliance
var _ service.SettingService = (*MockSettingService)(nil)

func NewMockSettingService() *MockSettingService {
	return &MockSettingService{Values: make(map[string]string)}
}

func (m *MockSettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	setting := &models.Setting{Key: key}
	if v, ok := m.Values[key]; ok {
		setting.Value = &v
	}
	return setting, nil
}

func (m *MockSettingService) Put(ctx context.Context, actor models.Actor, key, value string) (*models.Setting, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, actor, key, value)
	}
	m.Values[key] = value
	m.Puts = append(m.Puts, key)
	return &models.Setting{Key: key, Value: &value}, nil
}
