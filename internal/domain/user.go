package domain

import (
	"context"
	"time"
)

// User is a chat user. Owned by the account subsystem; read-only here.
type User struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Username    string    `bson:"username" json:"username"`
	DisplayName string    `bson:"display_name" json:"displayName"`
	Email       string    `bson:"email" json:"email"`
	Avatar      string    `bson:"avatar" json:"avatar"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// UserSummary is the partial projection embedded when a listing expands the
// owner relation.
type UserSummary struct {
	ID          string `bson:"_id" json:"id"`
	Username    string `bson:"username" json:"username"`
	DisplayName string `bson:"display_name" json:"displayName"`
	Email       string `bson:"email" json:"email"`
	Avatar      string `bson:"avatar" json:"avatar"`
}

// Summary returns the partial projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Avatar:      u.Avatar,
	}
}

// UserRepository reads users from the metadata store.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByIDs fetches a batch of users keyed by id. Missing ids are simply
	// absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)
}
