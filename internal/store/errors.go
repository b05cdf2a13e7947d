package store

import "errors"

var (
	// ErrConfigNotFound means neither a store file nor a bundled preset exists.
	ErrConfigNotFound = errors.New("config not found")

	// ErrConfigParse means the store file is not a valid store document.
	ErrConfigParse = errors.New("config parse error")

	// ErrPersistence means the store file could not be written.
	ErrPersistence = errors.New("persistence error")

	// ErrNotLoaded is returned by operations that need a successfully loaded store.
	ErrNotLoaded = errors.New("store not loaded")
)
