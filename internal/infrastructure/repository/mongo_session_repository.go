package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-oauth-app/internal/domain"
	"shopify-oauth-app/internal/infrastructure/repository/entity"
	"shopify-oauth-app/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepository implements SessionRepository using MongoDB
type MongoSessionRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoSessionRepository creates a new MongoDB session repository and
// ensures the TTL index on expiresAt
func NewMongoSessionRepository(ctx context.Context, db *mongo.Database) (ports.SessionRepository, error) {
	r := &MongoSessionRepository{
		collection: db.Collection("sessions"),
		now:        time.Now,
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, fmt.Errorf("failed to create session TTL index: %w", err)
	}

	return r, nil
}

// Get retrieves a session by ID
func (r *MongoSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var doc entity.MongoSessionDoc
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// The TTL monitor runs about once a minute, so expiry is checked here too.
	session := doc.ToDomain()
	if session.Expired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// Save saves or updates a session
func (r *MongoSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	doc := entity.MongoSessionDocFromDomain(session)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now()
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": session.ID}

	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete deletes a session by ID
func (r *MongoSessionRepository) Delete(ctx context.Context, id string) error {
	filter := bson.M{"_id": id}

	_, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
