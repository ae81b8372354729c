package domain

import (
	"context"
	"time"
)

// Room is a chat room. Owned by the rooms subsystem; this module only reads
// rooms to validate uploads.
type Room struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Slug      string    `bson:"slug" json:"slug"`
	Name      string    `bson:"name" json:"name"`
	OwnerID   string    `bson:"owner" json:"owner"`
	Archived  bool      `bson:"archived" json:"archived"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// RoomRepository reads rooms from the metadata store.
type RoomRepository interface {
	// GetByID returns ErrNotFound when the room does not exist.
	GetByID(ctx context.Context, id string) (*Room, error)
}
