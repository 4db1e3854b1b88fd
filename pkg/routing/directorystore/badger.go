package directorystore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// keys are namespaced so the store can share a database with other data.
var keyPrefix = []byte("dir/")

// Badger is a directory store persisted in a Badger database. The store
// does not own the database; opening and closing it is the caller's
// responsibility so the database can be shared.
type Badger struct {
	db *badger.DB
}

// NewBadger creates a directory store on top of an open Badger database.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func storeKey(key string) []byte {
	return append(append([]byte{}, keyPrefix...), key...)
}

// Get returns the shard mapped to the key.
func (b *Badger) Get(key string) (string, bool, error) {
	var id string
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		buf, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id = string(buf)
		found = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return id, found, nil
}

// Set maps a key to a shard.
func (b *Badger) Set(key, shardID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(key), []byte(shardID))
	})
}

// Delete removes a mapping.
func (b *Badger) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storeKey(key))
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warning("Unable to delete directory mapping")
	}
	return err
}

// Keys lists the mapped keys.
func (b *Badger) Keys() ([]string, error) {
	var ret []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			ret = append(ret, string(k[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
