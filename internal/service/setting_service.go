package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/validation"
)

type settingService struct {
	settings repository.SettingRepository
	gate     gate
	log      zerolog.Logger
}

func newSettingService(repos *repository.Repositories, log zerolog.Logger, metrics *observability.Metrics) *settingService {
	l := log.With().Str("service", "settings").Logger()
	return &settingService{
		settings: repos.Setting,
		gate:     gate{log: l, metrics: metrics},
		log:      l,
	}
}

// Get returns a setting. A missing key yields a nil value, not an error.
func (s *settingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	if err := validation.ValidateSettingKey(key); err != nil {
		return nil, err
	}
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return &models.Setting{Key: key}, nil
	}
	return setting, nil
}

// Put stores a setting
func (s *settingService) Put(ctx context.Context, actor models.Actor, key, value string) (*models.Setting, error) {
	if err := s.gate.check(actor, access.ManageSettings, access.None); err != nil {
		return nil, err
	}
	if err := validation.ValidateSettingKey(key); err != nil {
		return nil, err
	}

	setting := &models.Setting{Key: key, Value: &value, UpdatedAt: now()}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.log.Info().Str("key", key).Str("actor_id", actor.UserID).Msg("Setting updated")
	return setting, nil
}

type systemService struct {
	repos *repository.Repositories
}

func newSystemService(repos *repository.Repositories) *systemService {
	return &systemService{repos: repos}
}

// Stats counts the stored entities
func (s *systemService) Stats(ctx context.Context) (*models.Stats, error) {
	var (
		stats models.Stats
		err   error
	)
	if stats.Users, err = s.repos.User.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Articles, err = s.repos.Article.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Comments, err = s.repos.Comment.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Likes, err = s.repos.Like.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks the storage collaborator
func (s *systemService) Health(ctx context.Context) error {
	return s.repos.Store.HealthCheck(ctx)
}
