// Package store persists the small amount of state that survives a
// session: learned merchant→category overrides and the current
// categorized transaction table. Everything lives in a single bolt
// file, gob-encoded.
package store

import (
	"bytes"
	"encoding/gob"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"phonepe-analyzer/internal/model"
)

var (
	overridesBucket = []byte("overrides")
	txnsBucket      = []byte("txns")
)

type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the bolt file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open boltdb at %v", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{overridesBucket, txnsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to create buckets")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// PutOverride records a learned merchant→category mapping. Last write
// wins.
func (s *Store) PutOverride(merchant, category string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(overridesBucket).Put([]byte(merchant), []byte(category))
	})
	return errors.Wrapf(err, "unable to persist override for %q", merchant)
}

// Overrides returns all learned merchant→category mappings.
func (s *Store) Overrides() (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(overridesBucket).ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to read overrides")
	}
	return out, nil
}

// PutTxn writes one transaction, keyed by its uuid.
func (s *Store) PutTxn(t model.Transaction) error {
	var val bytes.Buffer
	if err := gob.NewEncoder(&val).Encode(t); err != nil {
		return errors.Wrapf(err, "unable to encode txn %v", t.Key)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(txnsBucket).Put(t.Key[:], val.Bytes())
	})
	return errors.Wrapf(err, "unable to persist txn %v", t.Key)
}

// Txns returns the stored transaction table, oldest first.
func (s *Store) Txns() ([]model.Transaction, error) {
	var txns []model.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(txnsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var t model.Transaction
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&t); err != nil {
				return errors.Wrapf(err, "unable to decode txn of %d bytes", len(v))
			}
			txns = append(txns, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	model.SortByDate(txns)
	return txns, nil
}

// ReplaceTxns drops the stored table and writes the given one. Called
// on every statement upload.
func (s *Store) ReplaceTxns(txns []model.Transaction) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(txnsBucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(txnsBucket)
		if err != nil {
			return err
		}
		for _, t := range txns {
			var val bytes.Buffer
			if err := gob.NewEncoder(&val).Encode(t); err != nil {
				return err
			}
			if err := b.Put(t.Key[:], val.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "unable to replace txn table")
}
