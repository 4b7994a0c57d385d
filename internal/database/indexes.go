package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates a unique index for every unique field of each table.
// The users email index is what makes signup's duplicate check atomic.
func EnsureIndexes(db *mongo.Database, specs ...TableSpec) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, spec := range specs {
		indexes := db.Collection(spec.Name).Indexes()
		for _, field := range spec.Unique {
			name := field + "_unique"
			model := mongo.IndexModel{
				Keys: bson.D{{Key: field, Value: 1}},
				Options: options.Index().
					SetName(name).
					SetUnique(true),
			}

			log.Printf("[STORE] [INFO] %s: creating %s index", spec.Name, name)
			if _, err := indexes.CreateOne(ctx, model); err != nil {
				log.Printf("[STORE] [ERROR] %s: %s index error: %v", spec.Name, name, err)
				return err
			}
		}
	}
	return nil
}
