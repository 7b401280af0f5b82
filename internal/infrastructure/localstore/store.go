// Package localstore keeps client-side key/value data in a BoltDB file with one
// bucket per profile.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const profilePrefix = "profile:"

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Profile returns the key/value view of one profile. The bucket is created on
// first write.
func (s *Store) Profile(name string) *Profile {
	if name == "" {
		name = "default"
	}
	return &Profile{db: s.db, bucket: []byte(profilePrefix + name)}
}

// Profiles lists profiles that have stored data.
func (s *Store) Profiles() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if len(name) > len(profilePrefix) && string(name[:len(profilePrefix)]) == profilePrefix {
				names = append(names, string(name[len(profilePrefix):]))
			}
			return nil
		})
	})
	return names, err
}

// Profile implements session.Storage over one bucket.
type Profile struct {
	db     *bolt.DB
	bucket []byte
}

func (p *Profile) Get(key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(p.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	return value, ok, err
}

func (p *Profile) Set(key, value string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(p.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (p *Profile) Remove(key string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(p.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Drop deletes every key of the profile.
func (p *Profile) Drop() error {
	return p.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(p.bucket)
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}
