// Package bbolt is a durable backend on top of bbolt. A store is
// one database file and each node is a top-level bucket in it.
package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/storage/kv/node"
	"github.com/jrife/kvnode/utils/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	DriverName = "bbolt"
	// OpenTimeout bounds how long opening waits for another
	// process to release its lock on the database file
	OpenTimeout = time.Second
)

type BBoltPlugin struct {
}

func (plugin *BBoltPlugin) Name() string {
	return DriverName
}

// NewStore opens a store. options must contain "path".
func (plugin *BBoltPlugin) NewStore(registry *observer.Registry, options map[string]interface{}, logger *zap.Logger) (kv.Store, error) {
	config := BBoltStoreConfig{Registry: registry, Logger: logger}

	if path, ok := options["path"]; !ok {
		return nil, fmt.Errorf("\"path\" is required")
	} else if pathString, ok := path.(string); !ok {
		return nil, fmt.Errorf("\"path\" must be a string")
	} else {
		config.Path = pathString
	}

	return New(config)
}

// NewTempStore opens a store in a fresh file that is
// deleted when the store is closed
func (plugin *BBoltPlugin) NewTempStore(registry *observer.Registry, logger *zap.Logger) (kv.Store, error) {
	return New(BBoltStoreConfig{
		Path:     filepath.Join(os.TempDir(), uuid.TempName("bbolt")),
		Registry: registry,
		Logger:   logger,
		Temp:     true,
	})
}

type BBoltStoreConfig struct {
	Path     string
	Registry *observer.Registry
	Logger   *zap.Logger
	// Temp deletes the database file on close
	Temp bool
}

// New opens or creates the database at config.Path
func New(config BBoltStoreConfig) (*node.Store, error) {
	db, err := bolt.Open(config.Path, 0600, &bolt.Options{Timeout: OpenTimeout})

	if err != nil {
		return nil, fmt.Errorf("could not open bbolt store at %s: %w: %w", config.Path, kv.ErrBackendUnavailable, err)
	}

	return node.NewStore(node.StoreConfig{
		Registry: config.Registry,
		Logger:   config.Logger,
		Persister: func(name string) (node.Persister, error) {
			return newPersister(db, name)
		},
		Close: func() error {
			if err := db.Close(); err != nil {
				return fmt.Errorf("could not close bbolt store: %w", err)
			}

			if !config.Temp {
				return nil
			}

			if err := os.RemoveAll(config.Path); err != nil {
				return fmt.Errorf("could not remove path %s: %w", config.Path, err)
			}

			return nil
		},
	}), nil
}

var _ node.Persister = (*bboltPersister)(nil)

type bboltPersister struct {
	db     *bolt.DB
	bucket []byte
}

func newPersister(db *bolt.DB, name string) (*bboltPersister, error) {
	if name == "" {
		return nil, fmt.Errorf("node name must not be empty")
	}

	persister := &bboltPersister{db: db, bucket: []byte(name)}

	if err := db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists(persister.bucket)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not ensure bucket %s exists: %w", name, err)
	}

	return persister, nil
}

func (persister *bboltPersister) Load() (*kv.NodeMap, error) {
	entries := map[string]kv.Value{}

	err := persister.db.View(func(txn *bolt.Tx) error {
		return txn.Bucket(persister.bucket).ForEach(func(key []byte, value []byte) error {
			var v kv.Value

			if err := v.UnmarshalBinary(value); err != nil {
				return fmt.Errorf("could not decode key %s: %w", key, err)
			}

			entries[string(key)] = v

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return kv.NodeMapOf(entries), nil
}

func (persister *bboltPersister) Put(key string, value kv.Value) error {
	encoded, err := value.MarshalBinary()

	if err != nil {
		return err
	}

	return persister.db.Update(func(txn *bolt.Tx) error {
		return txn.Bucket(persister.bucket).Put([]byte(key), encoded)
	})
}

func (persister *bboltPersister) Delete(key string) error {
	return persister.db.Update(func(txn *bolt.Tx) error {
		return txn.Bucket(persister.bucket).Delete([]byte(key))
	})
}

func (persister *bboltPersister) Clear() error {
	return persister.db.Update(func(txn *bolt.Tx) error {
		if err := txn.DeleteBucket(persister.bucket); err != nil {
			return err
		}

		_, err := txn.CreateBucket(persister.bucket)

		return err
	})
}

// Size returns the size of the whole database file, which
// every node of the store shares
func (persister *bboltPersister) Size() (int64, error) {
	var size int64

	err := persister.db.View(func(txn *bolt.Tx) error {
		size = txn.Size()

		return nil
	})

	return size, err
}

// Vacuum has no effect. bbolt reuses freed pages itself and
// compaction would require rewriting the file every node shares.
func (persister *bboltPersister) Vacuum() error {
	return nil
}

// Close has no effect. The database handle belongs to the store.
func (persister *bboltPersister) Close() error {
	return nil
}
