package auth

import (
	"context"
	"errors"

	"github.com/content-platform-api/internal/models"
)

// UserLookup loads users by id
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Resolver turns a presented credential into the actor behind it
type Resolver struct {
	tokens *TokenIssuer
	users  UserLookup
}

// NewResolver creates an identity resolver
func NewResolver(tokens *TokenIssuer, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns Anonymous for an empty credential and
// models.ErrInvalidCredential for a malformed, expired or unknown one. The
// role always comes from the stored user, never from the token.
func (r *Resolver) Resolve(ctx context.Context, credential string) (models.Actor, error) {
	if credential == "" {
		return models.Anonymous, nil
	}

	userID, err := r.tokens.Parse(credential)
	if err != nil {
		return models.Anonymous, err
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return models.Anonymous, err
	}
	if user == nil {
		return models.Anonymous, errors.Join(models.ErrInvalidCredential, errors.New("unknown user"))
	}
	return models.ActorFor(user), nil
}
