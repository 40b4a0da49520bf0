// Package memory implements the repository interfaces on in-process maps.
//
// All state lives behind one RWMutex. WithinTx holds the write lock for the
// whole unit of work and restores a snapshot when the unit fails, so a
// transaction is both isolated and all-or-nothing.
package memory

import (
	"context"
	"sync"

	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/repository"
)

type likeKey struct {
	articleID string
	userID    string
}

type state struct {
	users    map[string]*models.User
	articles map[string]*models.Article
	likes    map[likeKey]*models.Like
	comments map[string]*models.Comment
	settings map[string]*models.Setting
}

func newState() state {
	return state{
		users:    make(map[string]*models.User),
		articles: make(map[string]*models.Article),
		likes:    make(map[likeKey]*models.Like),
		comments: make(map[string]*models.Comment),
		settings: make(map[string]*models.Setting),
	}
}

// clone copies the maps. Entities are replaced, never mutated in place, so
// sharing the pointers is safe.
func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.articles {
		c.articles[k] = v
	}
	for k, v := range s.likes {
		c.likes[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

// Store is an in-memory implementation of every repository
type Store struct {
	mu       sync.RWMutex
	data     state
	failMu   sync.Mutex
	failures map[string]error
}

// New creates an empty store
func New() *Store {
	return &Store{
		data:     newState(),
		failures: make(map[string]error),
	}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Store:   s,
		User:    &userRepo{s},
		Article: &articleRepo{s},
		Like:    &likeRepo{s},
		Comment: &commentRepo{s},
		Setting: &settingRepo{s},
	}
}

type txKey struct{}

// WithinTx runs fn under the store's write lock and rolls back on error
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// FailOn makes every later call of op return err until ClearFailures.
// op is "<repo>.<Method>", for example "comments.DeleteByArticle".
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures[op] = err
}

// ClearFailures removes every injected failure
func (s *Store) ClearFailures() {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures = make(map[string]error)
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// read runs fn with shared access unless ctx already holds the write lock
func (s *Store) read(ctx context.Context, op string, fn func(d *state) error) error {
	if err := s.failure(op); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(&s.data)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.data)
}

// write runs fn with exclusive access unless ctx already holds the write lock
func (s *Store) write(ctx context.Context, op string, fn func(d *state) error) error {
	if err := s.failure(op); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(&s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}
