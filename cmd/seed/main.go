package main

import (
	"context"
	"log"
	"time"

	"github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Seeds demo users and rooms for local development.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	now := time.Now().UTC()

	users := []domain.User{
		{ID: "u-ada", Username: "ada", DisplayName: "Ada Lovelace", Email: "ada@example.com", Avatar: "ada.png", CreatedAt: now},
		{ID: "u-alan", Username: "alan", DisplayName: "Alan Turing", Email: "alan@example.com", Avatar: "alan.png", CreatedAt: now},
		{ID: "u-grace", Username: "grace", DisplayName: "Grace Hopper", Email: "grace@example.com", Avatar: "grace.png", CreatedAt: now},
	}

	rooms := []domain.Room{
		{ID: "r-general", Slug: "general", Name: "General", OwnerID: "u-ada", CreatedAt: now},
		{ID: "r-random", Slug: "random", Name: "Random", OwnerID: "u-alan", CreatedAt: now},
		{ID: "r-attic", Slug: "attic", Name: "Attic", OwnerID: "u-ada", Archived: true, CreatedAt: now},
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, user := range users {
		g.Go(func() error {
			opts := options.Replace().SetUpsert(true)
			_, err := db.Collection("users").ReplaceOne(gctx, bson.M{"_id": user.ID}, user, opts)
			return err
		})
	}

	for _, room := range rooms {
		g.Go(func() error {
			opts := options.Replace().SetUpsert(true)
			_, err := db.Collection("rooms").ReplaceOne(gctx, bson.M{"_id": room.ID}, room, opts)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users and %d rooms", len(users), len(rooms))
}
