package kv

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"github.com/dcnet/causalstore/enginelog"
)

var log = enginelog.For("bolt")

// bucketName is the single bucket BoltStore keeps everything in. Object
// isolation comes entirely from the key prefix, not from bucket
// boundaries, so a single bucket keeps range scans across the whole
// keyspace cheap and simple.
var bucketName = []byte("oplog")

// BoltStore is a kv.Store backed by bbolt. Internal storage format is not
// stable and is never observed outside this package.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if necessary) a bbolt-backed store at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		log.WithField("path", path).WithError(err).Error("failed to open bbolt database")
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		log.WithField("path", path).WithError(err).Error("failed to create bucket")
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		value = DecodeValue(string(v))
		return nil
	})
	return value, found, err
}

func (s *BoltStore) Scan(gte, lt string, fn func(key, value string) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		gteB := []byte(gte)
		ltB := []byte(lt)
		for k, v := c.Seek(gteB); k != nil; k, v = c.Next() {
			if len(ltB) > 0 && bytes.Compare(k, ltB) >= 0 {
				break
			}
			if err := fn(string(k), DecodeValue(string(v))); err != nil {
				return err
			}
		}
		return nil
	})
}

// Batch commits every write in a single bbolt write transaction, so a
// crash mid-batch never leaves a partial write visible.
func (s *BoltStore) Batch(writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, w := range writes {
			switch w.Kind {
			case Put:
				if err := b.Put([]byte(w.Key), []byte(EncodeValue(w.Value))); err != nil {
					return err
				}
			case Delete:
				if err := b.Delete([]byte(w.Key)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.WithField("writes", len(writes)).WithError(err).Error("batch commit failed")
	}
	return err
}
