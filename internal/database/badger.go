package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v3"
	"go.mongodb.org/mongo-driver/bson"
)

// maxTxnRetries bounds how often a write is replayed after Badger reports a
// transaction conflict with a concurrent writer.
const maxTxnRetries = 3

// BadgerDB holds an embedded Badger store. An empty directory opens an
// in-memory store.
type BadgerDB struct {
	InMemory bool
	DB       *badger.DB
}

// OpenBadger opens (or creates) a Badger store in dir.
func OpenBadger(dir string) (*BadgerDB, error) {
	inMemory := dir == ""
	opts := badger.DefaultOptions(dir).
		WithInMemory(inMemory).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerDB{DB: db, InMemory: inMemory}, nil
}

// Close handles closing the underlying store.
func (db *BadgerDB) Close() error {
	return db.DB.Close()
}

func (db *BadgerDB) update(fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		err := db.DB.Update(fn)
		if errors.Is(err, badger.ErrConflict) && attempt < maxTxnRetries {
			continue
		}
		return err
	}
}

func makeRecordKey(table, id string) []byte {
	return []byte(fmt.Sprintf("%s_%s", table, id))
}

func makeIndexKey(table, field, value string) []byte {
	return []byte(fmt.Sprintf("%s:%s_%s", table, field, value))
}

// BadgerTable stores bson-encoded records of type T under a per-table key
// prefix. Unique fields are kept in index keys written in the same
// transaction as the record.
type BadgerTable[T any] struct {
	db   *BadgerDB
	spec TableSpec
}

// NewBadgerTable returns a table stored in db.
func NewBadgerTable[T any](db *BadgerDB, spec TableSpec) *BadgerTable[T] {
	return &BadgerTable[T]{db: db, spec: spec}
}

func (t *BadgerTable[T]) Get(ctx context.Context, key string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *T
	err := t.db.DB.View(func(txn *badger.Txn) error {
		var err error
		rec, err = t.load(txn, key)
		return err
	})
	return rec, err
}

func (t *BadgerTable[T]) FindOne(ctx context.Context, field, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *T
	err := t.db.DB.View(func(txn *badger.Txn) error {
		if t.spec.isUnique(field) {
			id, err := t.indexOwner(txn, field, value)
			if err != nil {
				return err
			}
			if id == "" {
				return ErrNotFound
			}
			rec, err = t.load(txn, id)
			return err
		}

		return t.iterate(txn, func(doc bson.M, raw []byte) (bool, error) {
			if v, ok := lookupPath(doc, field); ok && v == value {
				var found T
				if err := bson.Unmarshal(raw, &found); err != nil {
					return false, err
				}
				rec = &found
				return true, nil
			}
			return false, nil
		})
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (t *BadgerTable[T]) Scan(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]*T, 0)
	err := t.db.DB.View(func(txn *badger.Txn) error {
		return t.iterate(txn, func(_ bson.M, raw []byte) (bool, error) {
			var rec T
			if err := bson.Unmarshal(raw, &rec); err != nil {
				return false, err
			}
			records = append(records, &rec)
			return false, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (t *BadgerTable[T]) Put(ctx context.Context, key string, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := encodeDoc(key, rec)
	if err != nil {
		return err
	}
	return t.db.update(func(txn *badger.Txn) error {
		old, err := t.loadDoc(txn, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return t.write(txn, key, old, doc)
	})
}

func (t *BadgerTable[T]) Insert(ctx context.Context, key string, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := encodeDoc(key, rec)
	if err != nil {
		return err
	}
	return t.db.update(func(txn *badger.Txn) error {
		_, err := txn.Get(makeRecordKey(t.spec.Name, key))
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return t.write(txn, key, nil, doc)
	})
}

// UpdateFields overwrites the named dotted paths and leaves every other
// field, including siblings under the same parent, untouched.
func (t *BadgerTable[T]) UpdateFields(ctx context.Context, key string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return t.db.update(func(txn *badger.Txn) error {
		old, err := t.loadDoc(txn, key)
		if err != nil {
			return err
		}

		doc, err := copyDoc(old)
		if err != nil {
			return err
		}
		for path, value := range fields {
			setPath(doc, path, value)
		}
		return t.write(txn, key, old, doc)
	})
}

func (t *BadgerTable[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return t.db.update(func(txn *badger.Txn) error {
		old, err := t.loadDoc(txn, key)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, field := range t.spec.Unique {
			if v, ok := uniqueValue(old, field); ok {
				if err := txn.Delete(makeIndexKey(t.spec.Name, field, v)); err != nil {
					return err
				}
			}
		}
		return txn.Delete(makeRecordKey(t.spec.Name, key))
	})
}

// write stores doc under key, moving unique index entries from old to doc.
func (t *BadgerTable[T]) write(txn *badger.Txn, key string, old, doc bson.M) error {
	for _, field := range t.spec.Unique {
		oldValue, hadOld := uniqueValue(old, field)
		newValue, hasNew := uniqueValue(doc, field)
		if hadOld && hasNew && oldValue == newValue {
			continue
		}

		if hasNew {
			owner, err := t.indexOwner(txn, field, newValue)
			if err != nil {
				return err
			}
			if owner != "" && owner != key {
				return ErrConflict
			}
			if err := txn.Set(makeIndexKey(t.spec.Name, field, newValue), []byte(key)); err != nil {
				return err
			}
		}
		if hadOld {
			if err := txn.Delete(makeIndexKey(t.spec.Name, field, oldValue)); err != nil {
				return err
			}
		}
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return txn.Set(makeRecordKey(t.spec.Name, key), raw)
}

func (t *BadgerTable[T]) indexOwner(txn *badger.Txn, field, value string) (string, error) {
	item, err := txn.Get(makeIndexKey(t.spec.Name, field, value))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(owner), nil
}

func (t *BadgerTable[T]) load(txn *badger.Txn, key string) (*T, error) {
	raw, err := t.loadRaw(txn, key)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := bson.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t *BadgerTable[T]) loadDoc(txn *badger.Txn, key string) (bson.M, error) {
	raw, err := t.loadRaw(txn, key)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (t *BadgerTable[T]) loadRaw(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get(makeRecordKey(t.spec.Name, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// iterate walks every record of the table until fn reports done.
func (t *BadgerTable[T]) iterate(txn *badger.Txn, fn func(doc bson.M, raw []byte) (bool, error)) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := makeRecordKey(t.spec.Name, "")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		raw, err := it.Item().ValueCopy(nil)
		if err != nil {
			return err
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return err
		}
		done, err := fn(doc, raw)
		if err != nil || done {
			return err
		}
	}
	return nil
}

func encodeDoc(key string, rec any) (bson.M, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	doc["_id"] = key
	return doc, nil
}

func copyDoc(doc bson.M) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func uniqueValue(doc bson.M, field string) (string, bool) {
	if doc == nil {
		return "", false
	}
	v, ok := lookupPath(doc, field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func asDoc(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return bson.M(m), true
	case bson.D:
		out := make(bson.M, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

func lookupPath(doc bson.M, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := doc
	for i, part := range parts {
		v, ok := cur[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if cur, ok = asDoc(v); !ok {
			return nil, false
		}
	}
	return nil, false
}

// setPath assigns value at a dotted path, creating intermediate documents
// and replacing non-document intermediates.
func setPath(doc bson.M, path string, value any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := asDoc(cur[part])
		if !ok {
			next = bson.M{}
		}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
