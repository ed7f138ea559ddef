package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSession = []byte("session")

// BoltKV is a text key-value store in a single bbolt bucket.
type BoltKV struct {
	db *bolt.DB
}

// OpenBoltKV opens or creates the session database at path.
func OpenBoltKV(path string) (*BoltKV, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session bucket: %w", err)
	}
	return &BoltKV{db: db}, nil
}

// Get returns the value stored under key.
func (kv *BoltKV) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := kv.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSession).Get([]byte(key))
		if data == nil {
			return nil
		}
		value = string(data)
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("read session key %q: %w", key, err)
	}
	return value, found, nil
}

// Set stores value under key.
func (kv *BoltKV) Set(key, value string) error {
	err := kv.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write session key %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (kv *BoltKV) Delete(key string) error {
	err := kv.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete session key %q: %w", key, err)
	}
	return nil
}

// Close releases the database file lock.
func (kv *BoltKV) Close() error {
	if kv == nil || kv.db == nil {
		return nil
	}
	return kv.db.Close()
}

// MemoryKV is an in-process key-value store.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	value, ok := kv.values[key]
	return value, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
	return nil
}
