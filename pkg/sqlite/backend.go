// Package sqlite provides the public API for the SQLite model store.
// This package exposes the factory function while keeping implementation
// details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/modelcore/internal/sqlite"
	"github.com/mesh-intelligence/modelcore/pkg/properties"
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// NewBackend creates a new SQLite store. The store is not attached; call
// Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend(logger)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".modeler",
//	})
//	defer store.Detach()
//	err = store.Load(model)
func NewBackend(logger *slog.Logger) types.Store[*properties.Model] {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
