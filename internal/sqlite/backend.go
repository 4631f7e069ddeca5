// Package sqlite implements the model store: SQLite as the query engine and
// JSONL files in DataDir as the source of truth. Save walks every property's
// save hook and Load replays the stored values through the load hooks.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/modelcore/pkg/properties"
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

var _ types.Store[*properties.Model] = (*Backend)(nil)

// Backend implements types.Store for properties.Model.
type Backend struct {
	mu       sync.Mutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func storeError(code string) oops.OopsErrorBuilder {
	return oops.In("sqlite").Code(code)
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite schema, creates
// missing JSONL files, and loads the JSONL files into SQLite.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return storeError("STORE_ALREADY_ATTACHED").Wrap(types.ErrAlreadyAttached)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
		config.DataDir = dataDir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return storeError("STORE_DATA_DIR").With("data_dir", dataDir).Wrapf(err, "creating data directory")
	}

	// The database is a cache of the JSONL files and is rebuilt on attach.
	dbPath := filepath.Join(dataDir, databaseFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return storeError("STORE_OPEN").With("path", dbPath).Wrapf(err, "opening database")
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return storeError("STORE_INIT").Wrap(err)
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return storeError("STORE_LOAD_JSONL").Wrapf(err, "load JSONL")
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

func createSchema(db *sql.DB) error {
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			return storeError("STORE_SCHEMA").Wrapf(err, "creating schema")
		}
	}
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, Save and Load return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return storeError("STORE_CLOSE").Wrap(err)
		}
	}
	return nil
}

// Count returns the number of stored elements.
func (b *Backend) Count() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, detached()
	}
	var n int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM elements").Scan(&n); err != nil {
		return 0, storeError("STORE_QUERY").Wrap(err)
	}
	return n, nil
}

func detached() error {
	return storeError("STORE_DETACHED").Wrap(types.ErrStoreDetached)
}

// persistJSONL rewrites both JSONL files from the current table contents.
func (b *Backend) persistJSONL() error {
	elements, err := b.queryElements()
	if err != nil {
		return err
	}
	values, err := b.queryValues()
	if err != nil {
		return err
	}
	elementRecords, err := marshalRecords(elements)
	if err != nil {
		return err
	}
	valueRecords, err := marshalRecords(values)
	if err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(b.config.DataDir, elementsJSONL), elementRecords); err != nil {
		return fmt.Errorf("persisting %s: %w", elementsJSONL, err)
	}
	if err := writeJSONL(filepath.Join(b.config.DataDir, elementValuesJSONL), valueRecords); err != nil {
		return fmt.Errorf("persisting %s: %w", elementValuesJSONL, err)
	}
	return nil
}

func (b *Backend) queryElements() ([]elementJSON, error) {
	rows, err := b.db.Query("SELECT element_id, class, created_at FROM elements ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying elements: %w", err)
	}
	defer rows.Close()

	var out []elementJSON
	for rows.Next() {
		var rec elementJSON
		if err := rows.Scan(&rec.ElementID, &rec.Class, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning element: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating elements: %w", err)
	}
	return out, nil
}

func (b *Backend) queryValues() ([]elementValueJSON, error) {
	rows, err := b.db.Query(`SELECT v.element_id, v.property, v.ordinal, v.value_type, v.value
FROM element_values v JOIN elements e ON e.element_id = v.element_id
ORDER BY e.rowid, v.rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying element values: %w", err)
	}
	defer rows.Close()

	var out []elementValueJSON
	for rows.Next() {
		var rec elementValueJSON
		if err := rows.Scan(&rec.ElementID, &rec.Property, &rec.Ordinal, &rec.ValueType, &rec.Value); err != nil {
			return nil, fmt.Errorf("scanning element value: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating element values: %w", err)
	}
	return out, nil
}
