package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTable stores records of type T in a MongoDB collection.
type MongoTable[T any] struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoTable returns a table backed by the collection named in spec.
func NewMongoTable[T any](db *mongo.Database, spec TableSpec, timeout time.Duration) *MongoTable[T] {
	return &MongoTable[T]{coll: db.Collection(spec.Name), timeout: timeout}
}

func (t *MongoTable[T]) Get(ctx context.Context, key string) (*T, error) {
	return t.findOne(ctx, bson.M{"_id": key})
}

func (t *MongoTable[T]) FindOne(ctx context.Context, field, value string) (*T, error) {
	return t.findOne(ctx, bson.M{field: value})
}

func (t *MongoTable[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var rec T
	if err := t.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Scan returns every record. The cursor keeps issuing getMore until the
// server reports the result set exhausted.
func (t *MongoTable[T]) Scan(ctx context.Context) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cursor, err := t.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]*T, 0)
	for cursor.Next(ctx) {
		var rec T
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (t *MongoTable[T]) Put(ctx context.Context, key string, rec *T) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.coll.ReplaceOne(ctx, bson.M{"_id": key}, rec, options.Replace().SetUpsert(true))
	return mapWriteError(err)
}

// Insert relies on the _id index and the unique indexes created by
// EnsureIndexes to reject duplicates atomically.
func (t *MongoTable[T]) Insert(ctx context.Context, key string, rec *T) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.coll.InsertOne(ctx, rec)
	return mapWriteError(err)
}

func (t *MongoTable[T]) UpdateFields(ctx context.Context, key string, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.coll.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *MongoTable[T]) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}
