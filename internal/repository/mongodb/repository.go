package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection      = "users"
	yieldsCollection     = "yields"
	salesCollection      = "sales"
	workersCollection    = "workers"
	attendanceCollection = "attendance"
	loansCollection      = "loan_ledger"
	financialsCollection = "financials"
	inventoryCollection  = "inventory"
	reportsCollection    = "daily_reports"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate document")
)

// Repository is the MongoDB backed store for every farm record. All reads and
// writes are scoped to an owner.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{client: client, db: client.Database(dbName)}, nil
}

// NewFromDatabase wraps an existing database handle. Close is a no-op for
// repositories built this way.
func NewFromDatabase(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

// EnsureIndexes creates the indexes the repository relies on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		attendanceCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "worker_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		loansCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "worker_id", Value: 1}, {Key: "date", Value: 1}}},
		},
		salesCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "crop_id", Value: 1}}},
		},
		financialsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: 1}}},
		},
		reportsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, idx := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

func (r *Repository) insert(ctx context.Context, coll string, doc interface{}) error {
	if _, err := r.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert into %s: %w", coll, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert into %s: %w", coll, err)
	}
	return nil
}

func (r *Repository) deleteOwned(ctx context.Context, coll, ownerID, id string) error {
	res, err := r.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s from %s: %w", id, coll, ErrNotFound)
	}
	return nil
}

func (r *Repository) findOneOwned(ctx context.Context, coll, ownerID, id string, out interface{}) error {
	err := r.db.Collection(coll).FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("find %s in %s: %w", id, coll, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to find in %s: %w", coll, err)
	}
	return nil
}

// findAll decodes every document matching filter into out, a pointer to a
// slice, ordered by sortField ascending.
func (r *Repository) findAll(ctx context.Context, coll string, filter bson.M, sortField string, out interface{}) error {
	opts := options.Find()
	if sortField != "" {
		opts.SetSort(bson.D{{Key: sortField, Value: 1}})
	}

	cursor, err := r.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll, err)
	}
	return nil
}
