package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
)

const snapshotCollection = "table_carts"

type mongoBackend struct {
	db *mongo.Database
}

func NewMongoBackend(db *mongo.Database) Backend {
	return &mongoBackend{db: db}
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// OpenMongoDB builds the client without the startup ping, for terminals that
// boot while the backend is unreachable. The connectivity monitor takes over
// from there.
func OpenMongoDB(uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(context.Background(), clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return client.Database(database), nil
}

func (m *mongoBackend) FetchSnapshot(ctx context.Context, tableID string) (*domain.CartSnapshot, error) {
	var snap domain.CartSnapshot

	filter := bson.M{"table_id": tableID}
	err := m.db.Collection(snapshotCollection).FindOne(ctx, filter).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	return &snap, nil
}

func (m *mongoBackend) UpsertSnapshot(ctx context.Context, snap *domain.CartSnapshot) error {
	filter := bson.M{"table_id": snap.TableID}
	update := bson.M{"$set": snap}
	opts := options.Update().SetUpsert(true)

	_, err := m.db.Collection(snapshotCollection).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot is idempotent: deleting a snapshot that is already gone is
// not an error, so at-least-once replay of a finalize stays harmless.
func (m *mongoBackend) DeleteSnapshot(ctx context.Context, tableID string) error {
	filter := bson.M{"table_id": tableID}
	if _, err := m.db.Collection(snapshotCollection).DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Write applies one generic collection mutation. Updates are upserts keyed by
// record id so duplicate replay converges instead of failing.
func (m *mongoBackend) Write(ctx context.Context, op domain.PendingOperation) error {
	coll := m.db.Collection(op.Collection)

	switch op.Type {
	case domain.OpInsert:
		if _, err := coll.InsertOne(ctx, op.Payload); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", op.Collection, err)
		}
	case domain.OpUpdate:
		filter := bson.M{"id": op.RecordID}
		update := bson.M{"$set": op.Payload}
		opts := options.Update().SetUpsert(true)
		if _, err := coll.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to update %s/%s: %w", op.Collection, op.RecordID, err)
		}
	case domain.OpDelete:
		if _, err := coll.DeleteOne(ctx, bson.M{"id": op.RecordID}); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", op.Collection, op.RecordID, err)
		}
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return nil
}

func (m *mongoBackend) ReadAll(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var records []map[string]interface{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return records, nil
}

func (m *mongoBackend) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, nil)
}

// CreateIndexes sets up the unique table_id index for the snapshot
// collection. Called once at startup.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(snapshotCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "table_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
