// Package sqlite is a durable backend on top of SQLite. A store
// is one database file holding every node in a single table.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/storage/kv/node"
	"github.com/jrife/kvnode/utils/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	DriverName = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    node    TEXT NOT NULL,
    key     TEXT NOT NULL,
    value   BLOB NOT NULL,
    PRIMARY KEY (node, key)
) WITHOUT ROWID;
`

type SQLitePlugin struct {
}

func (plugin *SQLitePlugin) Name() string {
	return DriverName
}

// NewStore opens a store. options must contain "path".
func (plugin *SQLitePlugin) NewStore(registry *observer.Registry, options map[string]interface{}, logger *zap.Logger) (kv.Store, error) {
	config := SQLiteStoreConfig{Registry: registry, Logger: logger}

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
func (plugin *SQLitePlugin) NewTempStore(registry *observer.Registry, logger *zap.Logger) (kv.Store, error) {
	return New(SQLiteStoreConfig{
		Path:     filepath.Join(os.TempDir(), uuid.TempName("sqlite")+".db"),
		Registry: registry,
		Logger:   logger,
		Temp:     true,
	})
}

type SQLiteStoreConfig struct {
	Path     string
	Registry *observer.Registry
	Logger   *zap.Logger
	// Temp deletes the database file on close
	Temp bool
}

// New opens or creates the database at config.Path
func New(config SQLiteStoreConfig) (*node.Store, error) {
	db, err := sql.Open("sqlite3", config.Path+"?_journal_mode=WAL&_busy_timeout=5000")

	if err != nil {
		return nil, fmt.Errorf("could not open sqlite store at %s: %w: %w", config.Path, kv.ErrBackendUnavailable, err)
	}

	// Writes are serialized by the nodes anyway and a single
	// connection avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not apply schema to sqlite store at %s: %w: %w", config.Path, kv.ErrBackendUnavailable, err)
	}

	return node.NewStore(node.StoreConfig{
		Registry: config.Registry,
		Logger:   config.Logger,
		Persister: func(name string) (node.Persister, error) {
			return &sqlitePersister{db: db, node: name}, nil
		},
		Close: func() error {
			if err := db.Close(); err != nil {
				return fmt.Errorf("could not close sqlite store: %w", err)
			}

			if !config.Temp {
				return nil
			}

			for _, suffix := range []string{"", "-wal", "-shm"} {
				if err := os.RemoveAll(config.Path + suffix); err != nil {
					return fmt.Errorf("could not remove path %s: %w", config.Path+suffix, err)
				}
			}

			return nil
		},
	}), nil
}

var _ node.Persister = (*sqlitePersister)(nil)

type sqlitePersister struct {
	db   *sql.DB
	node string
}

func (persister *sqlitePersister) Load() (*kv.NodeMap, error) {
	rows, err := persister.db.Query(`SELECT key, value FROM kv WHERE node = ?`, persister.node)

	if err != nil {
		return nil, fmt.Errorf("could not query node %s: %w", persister.node, err)
	}

	defer rows.Close()

	entries := map[string]kv.Value{}

	for rows.Next() {
		var key string
		var encoded []byte

		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}

		var value kv.Value

		if err := value.UnmarshalBinary(encoded); err != nil {
			return nil, fmt.Errorf("could not decode key %s: %w", key, err)
		}

		entries[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read node %s: %w", persister.node, err)
	}

	return kv.NodeMapOf(entries), nil
}

func (persister *sqlitePersister) Put(key string, value kv.Value) error {
	encoded, err := value.MarshalBinary()

	if err != nil {
		return err
	}

	_, err = persister.db.Exec(`
		INSERT INTO kv (node, key, value) VALUES (?, ?, ?)
		ON CONFLICT (node, key) DO UPDATE SET value = excluded.value`,
		persister.node, key, encoded,
	)

	return err
}

func (persister *sqlitePersister) Delete(key string) error {
	_, err := persister.db.Exec(`DELETE FROM kv WHERE node = ? AND key = ?`, persister.node, key)

	return err
}

func (persister *sqlitePersister) Clear() error {
	_, err := persister.db.Exec(`DELETE FROM kv WHERE node = ?`, persister.node)

	return err
}

// Size returns the size of the whole database, which every
// node of the store shares
func (persister *sqlitePersister) Size() (int64, error) {
	var pageCount, pageSize int64

	if err := persister.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount); err != nil {
		return 0, err
	}

	if err := persister.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize); err != nil {
		return 0, err
	}

	return pageCount * pageSize, nil
}

func (persister *sqlitePersister) Vacuum() error {
	_, err := persister.db.Exec(`VACUUM`)

	return err
}

// Close has no effect. The database handle belongs to the store.
func (persister *sqlitePersister) Close() error {
	return nil
}
