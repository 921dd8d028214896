// Package store is the durable entity layer backing users and chats.
// Entities are JSON-encoded into BadgerDB under a per-collection prefix.
// All read-modify-write goes through Mutate, which serializes concurrent
// mutations of the same key; mutations of different keys do not block each
// other. This replaces reading and rewriting whole collections, which loses
// concurrent updates.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var (
	// ErrNotFound signals an absent key; the caller decides whether that
	// is a user error or a bug.
	ErrNotFound = errors.New("entity not found")
	// ErrKeyExists signals a Create for an id already in use.
	ErrKeyExists = errors.New("entity already exists")
)

// Entity is anything the store can persist.
type Entity interface {
	Key() string
}

// Store holds one collection of entities of type T.
type Store[T Entity] struct {
	db     *badger.DB
	prefix string
	locks  *keyedLocks
}

// New creates a collection bound to prefix, e.g. "user" or "chat".
func New[T Entity](db *badger.DB, prefix string) *Store[T] {
	return &Store[T]{db: db, prefix: prefix, locks: newKeyedLocks()}
}

// Get loads the entity stored under key.
func (s *Store[T]) Get(key string) (T, error) {
	var entity T
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.dbKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		})
	})
	return entity, err
}

// Create persists a new entity; the key must not be in use yet.
func (s *Store[T]) Create(entity T) (T, error) {
	key := entity.Key()
	s.locks.lock(key)
	defer s.locks.unlock(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(s.dbKey(key)); err == nil {
			return ErrKeyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return s.set(txn, entity)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return entity, nil
}

// Mutate applies fn to the entity under key and persists the result. Calls
// for the same key run one at a time, each seeing the previous outcome. An
// error returned by fn aborts the mutation and is handed back unchanged,
// which lets callers run guards inside the critical section.
func (s *Store[T]) Mutate(key string, fn func(T) (T, error)) (T, error) {
	s.locks.lock(key)
	defer s.locks.unlock(key)

	var updated T
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(s.dbKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		var current T
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &current)
		}); err != nil {
			return err
		}
		updated, err = fn(current)
		if err != nil {
			return err
		}
		return s.set(txn, updated)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Delete removes the entity under key.
func (s *Store[T]) Delete(key string) error {
	s.locks.lock(key)
	defer s.locks.unlock(key)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(s.dbKey(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(s.dbKey(key))
	})
}

// Query returns every entity in the collection matching pred, via a prefix
// scan over the collection's keyspace.
func (s *Store[T]) Query(pred func(T) bool) ([]T, error) {
	var result []T
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(s.prefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entity T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entity)
			}); err != nil {
				return err
			}
			if pred(entity) {
				result = append(result, entity)
			}
		}
		return nil
	})
	return result, err
}

func (s *Store[T]) set(txn *badger.Txn, entity T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal %s entity: %w", s.prefix, err)
	}
	return txn.Set(s.dbKey(entity.Key()), data)
}

func (s *Store[T]) dbKey(key string) []byte {
	return []byte(s.prefix + ":" + key)
}
