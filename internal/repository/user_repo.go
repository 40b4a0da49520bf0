package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, role, password_hash, external_id, profile_pic, created_at, updated_at`

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Role,
		nullString(user.PasswordHash), nullString(user.ExternalID), nullString(user.ProfilePic),
		user.CreatedAt, user.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return oops.In("user_repo").With("email", user.Email).Wrap(models.ErrConflict)
	}
	if err != nil {
		return oops.In("user_repo").With("user_id", user.ID).Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by lowercased email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByExternalID retrieves a user linked to an external identity
func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.getOne(ctx, "external_id = $1", externalID)
}

func (r *userRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(r.db.Conn(ctx).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("user_repo").With("where", where).Wrap(err)
	}
	return user, nil
}

// LinkExternalID attaches an external identity to an existing account
func (r *userRepo) LinkExternalID(ctx context.Context, id, externalID string) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		"UPDATE users SET external_id = $2, updated_at = $3 WHERE id = $1",
		id, externalID, time.Now().UTC(),
	)
	if database.IsUniqueViolation(err) {
		return oops.In("user_repo").With("user_id", id).Wrap(models.ErrConflict)
	}
	if err != nil {
		return oops.In("user_repo").With("user_id", id).Wrap(err)
	}
	return nil
}

// UpdateRole changes a user's role
func (r *userRepo) UpdateRole(ctx context.Context, id string, role models.Role) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		"UPDATE users SET role = $2, updated_at = $3 WHERE id = $1",
		id, role, time.Now().UTC(),
	)
	if err != nil {
		return false, oops.In("user_repo").With("user_id", id).Wrap(err)
	}
	return affected(res)
}

// List returns all users, newest first
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, oops.In("user_repo").Wrap(err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.In("user_repo").Wrap(err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, oops.In("user_repo").Wrap(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash, externalID, profilePic sql.NullString

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&passwordHash, &externalID, &profilePic,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash.String
	user.ExternalID = externalID.String
	user.ProfilePic = profilePic.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
