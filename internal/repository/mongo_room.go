package repository

import (
	"context"
	"fmt"

	"github.com/palaver-chat/palaver/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const roomsCollection = "rooms"

// MongoRoomRepository implements domain.RoomRepository using MongoDB
type MongoRoomRepository struct {
	collection *mongo.Collection
}

// NewMongoRoomRepository creates a new MongoDB room repository
func NewMongoRoomRepository(db *mongo.Database) *MongoRoomRepository {
	return &MongoRoomRepository{
		collection: db.Collection(roomsCollection),
	}
}

// GetByID retrieves a room by id, returning domain.ErrNotFound when it does
// not exist.
func (r *MongoRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}
