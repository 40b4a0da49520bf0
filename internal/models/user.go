package models

import (
	"time"
)

// Role is the sole authorization axis of a user
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleAdmin  Role = "admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleReader: true,
	RoleWriter: true,
	RoleAdmin:  true,
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return ValidRoles[r]
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email,omitempty" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	ExternalID   string    `json:"-" db:"external_id"`
	ProfilePic   string    `json:"profile_pic,omitempty" db:"profile_pic"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the resolved identity attempting an operation.
// The zero value is the anonymous actor.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

// Anonymous is the actor used when no credential was presented
var Anonymous = Actor{}

// IsAnonymous reports whether the actor carries no identity
func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}

// ActorFor builds the actor for a stored user
func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// RegisterRequest is the self-registration payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the password login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ExternalIdentity is a verified identity handed over by an external provider
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// AuthResponse is returned by every credential-issuing operation
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
