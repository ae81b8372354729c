package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/palaver-chat/palaver/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

const messagesCollection = "messages"

// MongoMessageRepository implements domain.MessageRepository using MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoDB message repository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{
		collection: db.Collection(messagesCollection),
	}
}

// Create saves a new chat message
func (r *MongoMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if message.ID == "" {
		message.ID = ulid.Make().String()
	}
	if message.Posted.IsZero() {
		message.Posted = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}
