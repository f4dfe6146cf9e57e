package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const duplicateKeyCode = 11000

// MongoPersistence implements Persistence with one document per game
type MongoPersistence struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig locates the games collection
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoPersistence connects to MongoDB and pings the server
func NewMongoPersistence(ctx context.Context, cfg MongoConfig) (*MongoPersistence, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoPersistence{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Close disconnects the client
func (mp *MongoPersistence) Close(ctx context.Context) error {
	return mp.client.Disconnect(ctx)
}

// Save inserts a new game or replaces the document holding expectedVersion
func (mp *MongoPersistence) Save(ctx context.Context, game *Game, expectedVersion int64) error {
	if game == nil {
		return fmt.Errorf("game cannot be nil")
	}

	if expectedVersion == 0 {
		if _, err := mp.collection.InsertOne(ctx, game); err != nil {
			if isDuplicateKey(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to insert game: %w", err)
		}
		return nil
	}

	filter := bson.D{{Key: "_id", Value: game.ID}, {Key: "version", Value: expectedVersion}}
	res, err := mp.collection.ReplaceOne(ctx, filter, game)
	if err != nil {
		return fmt.Errorf("failed to replace game: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Load fetches a game by id
func (mp *MongoPersistence) Load(ctx context.Context, id string) (*Game, error) {
	var game Game
	err := mp.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&game)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if err := game.State.Validate(); err != nil {
		return nil, fmt.Errorf("stored game %s is corrupt: %w", id, err)
	}
	return &game, nil
}

// Delete removes a game document
func (mp *MongoPersistence) Delete(ctx context.Context, id string) error {
	res, err := mp.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// ListAll returns every stored game id
func (mp *MongoPersistence) ListAll(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}})
	cur, err := mp.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode game ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// Exists checks whether a document with id is stored
func (mp *MongoPersistence) Exists(ctx context.Context, id string) (bool, error) {
	n, err := mp.collection.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check game: %w", err)
	}
	return n > 0, nil
}

func isDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == duplicateKeyCode {
				return true
			}
		}
	}
	return false
}
