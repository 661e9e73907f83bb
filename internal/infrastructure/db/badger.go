package db

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// OpenBadger opens (creating if needed) a BadgerDB at path with Badger's own logger disabled
func OpenBadger(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
