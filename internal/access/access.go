// Package access decides whether an actor may perform an action on a resource.
//
// Every decision is made from a fixed rule table. Nothing is cached between
// calls, so a role change takes effect on the next request.
package access

import (
	"github.com/content-platform-api/internal/models"
)

// Action names an operation guarded by the gate
type Action string

const (
	ReadPublished       Action = "read_published"
	ReadDraft           Action = "read_draft"
	CreateArticle       Action = "create_article"
	EditArticle         Action = "edit_article"
	PublishArticle      Action = "publish_article"
	DeleteArticle       Action = "delete_article"
	FeatureArticle      Action = "feature_article"
	ListAuthorArticles  Action = "list_author_articles"
	ToggleLike          Action = "toggle_like"
	CreateComment       Action = "create_comment"
	ModerateComment     Action = "moderate_comment"
	DeleteComment       Action = "delete_comment"
	ListPendingComments Action = "list_pending_comments"
	ListUsers           Action = "list_users"
	ChangeUserRole      Action = "change_user_role"
	ManageSettings      Action = "manage_settings"
)

// Resource describes the target of an action. OwnerID is the author of the
// article, or of the parent article for a comment. It is empty when the
// action has no owned target.
type Resource struct {
	OwnerID string
}

// None is the resource for actions without an owned target
var None = Resource{}

// Owned returns a resource owned by ownerID
func Owned(ownerID string) Resource {
	return Resource{OwnerID: ownerID}
}

type roleSet map[models.Role]bool

func roles(rs ...models.Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = true
	}
	return set
}

// rule grants an action. public admits everyone including anonymous actors,
// anyone admits the listed roles regardless of ownership, owner admits the
// listed roles only when the actor owns the resource.
type rule struct {
	public bool
	anyone roleSet
	owner  roleSet
}

var (
	authenticated = roles(models.RoleReader, models.RoleWriter, models.RoleAdmin)
	authors       = roles(models.RoleWriter, models.RoleAdmin)
	admins        = roles(models.RoleAdmin)
)

var rules = map[Action]rule{
	ReadPublished:       {public: true},
	ReadDraft:           {anyone: admins, owner: authors},
	CreateArticle:       {anyone: authors},
	EditArticle:         {anyone: admins, owner: authors},
	PublishArticle:      {anyone: admins, owner: authors},
	DeleteArticle:       {anyone: admins, owner: authors},
	FeatureArticle:      {anyone: admins},
	ListAuthorArticles:  {anyone: admins, owner: authors},
	ToggleLike:          {anyone: authenticated},
	CreateComment:       {anyone: authenticated},
	ModerateComment:     {anyone: admins, owner: authors},
	DeleteComment:       {anyone: admins, owner: authors},
	ListPendingComments: {anyone: authors},
	ListUsers:           {anyone: admins},
	ChangeUserRole:      {anyone: admins},
	ManageSettings:      {anyone: admins},
}

// CanPerform reports whether actor may perform action on res.
// Unknown actions and anonymous actors outside public reads are denied.
func CanPerform(actor models.Actor, action Action, res Resource) bool {
	r, ok := rules[action]
	if !ok {
		return false
	}
	if r.public {
		return true
	}
	if actor.IsAnonymous() || !actor.Role.Valid() {
		return false
	}
	if r.anyone[actor.Role] {
		return true
	}
	return res.OwnerID != "" && res.OwnerID == actor.UserID && r.owner[actor.Role]
}

// Actions returns every action known to the gate
func Actions() []Action {
	out := make([]Action, 0, len(rules))
	for a := range rules {
		out = append(out, a)
	}
	return out
}
