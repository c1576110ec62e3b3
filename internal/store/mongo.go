package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store against a MongoDB database, one collection
// per job name, per spec.md's document-store layout.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and pings the server, returning a ready MongoStore
// scoped to database dbName.
func Connect(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func toBsonFilter(f Filter) bson.M {
	m := bson.M{}
	for k, v := range f {
		m[k] = v
	}
	return m
}

// FindOne implements Store.
func (m *MongoStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, bool, error) {
	var doc bson.M
	err := m.db.Collection(collection).FindOne(ctx, toBsonFilter(filter)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("finding document: %w", err)
	}

	out := make(Document, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out, true, nil
}

// Count implements Store.
func (m *MongoStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, toBsonFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// InsertOne implements Store.
func (m *MongoStore) InsertOne(ctx context.Context, collection string, doc Document) error {
	_, err := m.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// ReplaceOne implements Store.
func (m *MongoStore) ReplaceOne(ctx context.Context, collection string, filter Filter, doc Document) error {
	_, err := m.db.Collection(collection).ReplaceOne(ctx, toBsonFilter(filter), bson.M(doc))
	if err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}

// UpdateField implements Store.
func (m *MongoStore) UpdateField(ctx context.Context, collection string, filter Filter, field string, value any) error {
	update := bson.M{"$set": bson.M{field: value}}
	_, err := m.db.Collection(collection).UpdateOne(ctx, toBsonFilter(filter), update)
	if err != nil {
		return fmt.Errorf("updating field %s: %w", field, err)
	}
	return nil
}

// Close implements Store.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
