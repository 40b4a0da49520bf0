package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/content-platform-api/internal/access"
	"github.com/content-platform-api/internal/models"
)

var (
	anon   = models.Anonymous
	reader = models.Actor{UserID: "reader-1", Role: models.RoleReader}
	writer = models.Actor{UserID: "writer-1", Role: models.RoleWriter}
	admin  = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
)

func TestCanPerform_Matrix(t *testing.T) {
	otherOwned := access.Owned("someone-else")

	tests := []struct {
		name   string
		action access.Action
		res    access.Resource
		want   map[string]bool // keyed by actor label
	}{
		{
			name:   "read published",
			action: access.ReadPublished,
			res:    otherOwned,
			want:   map[string]bool{"anon": true, "reader": true, "writer": true, "owner": true, "admin": true},
		},
		{
			name:   "create article",
			action: access.CreateArticle,
			res:    access.None,
			want:   map[string]bool{"anon": false, "reader": false, "writer": true, "owner": true, "admin": true},
		},
		{
			name:   "edit article",
			action: access.EditArticle,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": true, "admin": true},
		},
		{
			name:   "publish article",
			action: access.PublishArticle,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": true, "admin": true},
		},
		{
			name:   "delete article",
			action: access.DeleteArticle,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": true, "admin": true},
		},
		{
			name:   "toggle like",
			action: access.ToggleLike,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": true, "writer": true, "owner": true, "admin": true},
		},
		{
			name:   "create comment",
			action: access.CreateComment,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": true, "writer": true, "owner": true, "admin": true},
		},
		{
			name:   "moderate comment",
			action: access.ModerateComment,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": true, "admin": true},
		},
		{
			name:   "delete comment",
			action: access.DeleteComment,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": true, "admin": true},
		},
		{
			name:   "list users",
			action: access.ListUsers,
			res:    access.None,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": false, "admin": true},
		},
		{
			name:   "change user role",
			action: access.ChangeUserRole,
			res:    access.None,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": false, "admin": true},
		},
		{
			name:   "feature article",
			action: access.FeatureArticle,
			res:    otherOwned,
			want:   map[string]bool{"anon": false, "reader": false, "writer": false, "owner": false, "admin": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// "owner" is a writer whose id matches the resource owner
			owner := models.Actor{UserID: tt.res.OwnerID, Role: models.RoleWriter}
			if tt.res.OwnerID == "" {
				owner = models.Actor{UserID: "writer-2", Role: models.RoleWriter}
			}
			actors := map[string]models.Actor{
				"anon":   anon,
				"reader": reader,
				"writer": writer,
				"owner":  owner,
				"admin":  admin,
			}
			for label, actor := range actors {
				assert.Equal(t, tt.want[label], access.CanPerform(actor, tt.action, tt.res),
					"actor %s on %s", label, tt.action)
			}
		})
	}
}

func TestCanPerform_AnonymousOnlyReadsPublished(t *testing.T) {
	for _, action := range access.Actions() {
		got := access.CanPerform(anon, action, access.Owned(""))
		assert.Equal(t, action == access.ReadPublished, got, "action %s", action)
	}
}

func TestCanPerform_ReaderOwningArticleCannotEdit(t *testing.T) {
	demoted := models.Actor{UserID: "u-1", Role: models.RoleReader}

	assert.False(t, access.CanPerform(demoted, access.EditArticle, access.Owned("u-1")))
	assert.False(t, access.CanPerform(demoted, access.ModerateComment, access.Owned("u-1")))
}

func TestCanPerform_AdminOwningArticle(t *testing.T) {
	assert.True(t, access.CanPerform(admin, access.EditArticle, access.Owned(admin.UserID)))
	assert.True(t, access.CanPerform(admin, access.ReadDraft, access.Owned(admin.UserID)))
}

func TestCanPerform_UnknownActionDenied(t *testing.T) {
	assert.False(t, access.CanPerform(admin, access.Action("drop_database"), access.None))
}

func TestCanPerform_InvalidRoleDenied(t *testing.T) {
	ghost := models.Actor{UserID: "u-9", Role: models.Role("superuser")}

	assert.False(t, access.CanPerform(ghost, access.ToggleLike, access.None))
	assert.True(t, access.CanPerform(ghost, access.ReadPublished, access.None))
}

func TestCanPerform_EmptyOwnerNeverMatches(t *testing.T) {
	// an actor with an empty id is anonymous, and an empty owner is never owned
	assert.False(t, access.CanPerform(writer, access.EditArticle, access.None))
}
