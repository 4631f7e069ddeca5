package types

import "errors"

// Store persists a model. Implementations walk every property's save hook on
// Save and replay values through load hooks on Load.
type Store[M any] interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Save replaces the stored contents with the state of model.
	Save(model M) error

	// Load recreates the stored elements inside model, which should be empty.
	Load(model M) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Save and Load return ErrStoreDetached.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
