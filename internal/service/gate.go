package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/models"
	"github.com/content-platform-api/internal/observability"
)

// gate consults the permission table and records refusals
type gate struct {
	log     zerolog.Logger
	metrics *observability.Metrics
}

func (g gate) check(actor models.Actor, action access.Action, res access.Resource) error {
	if access.CanPerform(actor, action, res) {
		return nil
	}
	g.metrics.PermissionDenied(string(action))
	g.log.Debug().
		Str("actor_id", actor.UserID).
		Str("role", string(actor.Role)).
		Str("action", string(action)).
		Msg("Permission denied")
	return fmt.Errorf("%w: %s", models.ErrPermissionDenied, action)
}

// canRead reports whether actor may see article. Drafts are visible to
// their owner and to admins only.
func canRead(actor models.Actor, article *models.Article) bool {
	if article.IsPublished() {
		return access.CanPerform(actor, access.ReadPublished, access.Owned(article.AuthorID))
	}
	return access.CanPerform(actor, access.ReadDraft, access.Owned(article.AuthorID))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
}
