package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/palaver-chat/palaver/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const filesCollection = "files"

// MongoFileRepository implements domain.FileRepository using MongoDB
type MongoFileRepository struct {
	collection *mongo.Collection
}

// NewMongoFileRepository creates a new MongoDB file repository
func NewMongoFileRepository(db *mongo.Database) *MongoFileRepository {
	collection := db.Collection(filesCollection)

	// Create indexes for better query performance
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Room listings sort by upload time, newest first
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "room", Value: 1},
			{Key: "uploaded", Value: -1},
		},
	}
	_, _ = collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoFileRepository{
		collection: collection,
	}
}

// Create saves a new file record
func (r *MongoFileRepository) Create(ctx context.Context, file *domain.File) error {
	if file.ID == "" {
		file.ID = ulid.Make().String()
	}
	if file.Uploaded.IsZero() {
		file.Uploaded = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	return nil
}

// GetByID retrieves a single file record
func (r *MongoFileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	var file domain.File
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find file record: %w", err)
	}

	return &file, nil
}

// Delete removes a file record. Deleting a record that is already gone is
// not an error.
func (r *MongoFileRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	return nil
}

// Find returns file records matching the supplied options. All filters are
// combined with AND semantics; the from bound is exclusive, the to bound
// inclusive.
func (r *MongoFileRepository) Find(ctx context.Context, listOpts domain.ListFilesOptions) ([]*domain.File, error) {
	filter := bson.M{}

	if listOpts.Room != "" {
		filter["room"] = listOpts.Room
	}

	uploaded := bson.M{}
	if !listOpts.From.IsZero() {
		uploaded["$gt"] = listOpts.From
	}
	if !listOpts.To.IsZero() {
		uploaded["$lte"] = listOpts.To
	}
	if len(uploaded) > 0 {
		filter["uploaded"] = uploaded
	}

	sortOrder := 1
	if listOpts.Reverse {
		sortOrder = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded", Value: sortOrder}}).
		SetSkip(listOpts.Skip).
		SetLimit(listOpts.Take)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find file records: %w", err)
	}
	defer cursor.Close(ctx)

	var files []*domain.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode file records: %w", err)
	}

	return files, nil
}
