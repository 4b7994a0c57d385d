package database

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record matches the requested key or field.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write finds the key or a unique
	// field value already taken.
	ErrConflict = errors.New("record already exists")
)

// TableSpec describes a table: its name and the fields whose values must be
// unique across records.
type TableSpec struct {
	Name   string
	Unique []string
}

func (s TableSpec) isUnique(field string) bool {
	for _, f := range s.Unique {
		if f == field {
			return true
		}
	}
	return false
}

// Table is a keyed collection of records of type T. Records are encoded with
// their bson tags; the key is stored as the record's "_id".
type Table[T any] interface {
	Get(ctx context.Context, key string) (*T, error)
	FindOne(ctx context.Context, field, value string) (*T, error)
	Scan(ctx context.Context) ([]*T, error)
	Put(ctx context.Context, key string, rec *T) error
	Insert(ctx context.Context, key string, rec *T) error
	UpdateFields(ctx context.Context, key string, fields map[string]any) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Table[struct{}] = (*MongoTable[struct{}])(nil)
	_ Table[struct{}] = (*BadgerTable[struct{}])(nil)
)
