package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/auth"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
	"github.com/content-platform-api/internal/repository"
	"github.com/content-platform-api/internal/validation"
)

type userService struct {
	repos    *repository.Repositories
	tokens   *auth.TokenIssuer
	hasher   *auth.PasswordHasher
	verifier *auth.AssertionVerifier
	gate     gate
	log      zerolog.Logger
}

func newUserService(
	repos *repository.Repositories,
	tokens *auth.TokenIssuer,
	hasher *auth.PasswordHasher,
	verifier *auth.AssertionVerifier,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *userService {
	l := log.With().Str("service", "users").Logger()
	return &userService{
		repos:    repos,
		tokens:   tokens,
		hasher:   hasher,
		verifier: verifier,
		gate:     gate{log: l, metrics: metrics},
		log:      l,
	}
}

// Register creates a reader account and signs it in
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (_ *models.AuthResponse, err error) {
	ctx, span := startSpan(ctx, "users.register")
	defer func() { endSpan(span, err) }()

	email, err := validation.ValidateRegistration(req)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	ts := now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleReader,
		PasswordHash: hash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return s.signIn(user)
}

// Login verifies an email/password pair. Unknown emails and wrong passwords
// fail identically.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (_ *models.AuthResponse, err error) {
	ctx, span := startSpan(ctx, "users.login")
	defer func() { endSpan(span, err) }()

	user, err := s.repos.User.GetByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrInvalidCredential)
	}
	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrInvalidCredential)
	}
	return s.signIn(user)
}

// LoginExternal signs in with an identity assertion from the external
// provider, linking or creating the account as needed
func (s *userService) LoginExternal(ctx context.Context, assertion string) (_ *models.AuthResponse, err error) {
	ctx, span := startSpan(ctx, "users.login_external")
	defer func() { endSpan(span, err) }()

	identity, err := s.verifier.Verify(assertion)
	if err != nil {
		return nil, err
	}
	email, err := validation.ValidateEmail(identity.Email)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.repos.Store.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.repos.User.GetByExternalID(ctx, identity.Subject)
		if err != nil {
			return err
		}
		if found == nil {
			if found, err = s.repos.User.GetByEmail(ctx, email); err != nil {
				return err
			}
		}
		if found != nil {
			if found.ExternalID == "" {
				if err := s.repos.User.LinkExternalID(ctx, found.ID, identity.Subject); err != nil {
					return err
				}
				found.ExternalID = identity.Subject
				s.log.Info().Str("user_id", found.ID).Msg("External identity linked")
			}
			user = found
			return nil
		}

		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		ts := now()
		user = &models.User{
			ID:         uuid.New().String(),
			Email:      email,
			Name:       name,
			Role:       models.RoleReader,
			ExternalID: identity.Subject,
			ProfilePic: identity.Picture,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		}
		if err := s.repos.User.Create(ctx, user); err != nil {
			return err
		}
		s.log.Info().Str("user_id", user.ID).Msg("User registered through external identity")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

func (s *userService) signIn(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Me returns the actor's own profile
func (s *userService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%w: authentication required", models.ErrInvalidCredential)
	}
	user, err := s.repos.User.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", actor.UserID)
	}
	return user, nil
}

// List returns every user
func (s *userService) List(ctx context.Context, actor models.Actor) (_ []*models.User, err error) {
	ctx, span := startSpan(ctx, "users.list")
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.ListUsers, access.None); err != nil {
		return nil, err
	}
	return s.repos.User.List(ctx)
}

// Get returns a user's public profile
func (s *userService) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", id)
	}
	if actor.UserID != user.ID && actor.Role != models.RoleAdmin {
		user.Email = ""
	}
	return user, nil
}

// ChangeRole sets another user's role. Admins cannot change their own role.
func (s *userService) ChangeRole(ctx context.Context, actor models.Actor, id string, role models.Role) (_ *models.User, err error) {
	ctx, span := startSpan(ctx, "users.change_role",
		attribute.String("user.id", id),
		attribute.String("user.role", string(role)),
	)
	defer func() { endSpan(span, err) }()

	if err := s.gate.check(actor, access.ChangeUserRole, access.None); err != nil {
		return nil, err
	}
	if err := validation.ValidateRole(role); err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, fmt.Errorf("%w: cannot change own role", models.ErrPermissionDenied)
	}

	updated, err := s.repos.User.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, notFound("user", id)
	}

	s.log.Info().Str("user_id", id).Str("role", string(role)).Str("actor_id", actor.UserID).Msg("User role changed")
	return s.Get(ctx, actor, id)
}
