// Package initdb wires the pager, buffer pool, and catalog together into a
// freshly created database directory.
package initdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Takashiidobe/tinydb/internal/catalog"
	"github.com/Takashiidobe/tinydb/internal/pager"
)

// ErrAlreadyExists is returned by InitDatabase when the target database
// directory already exists.
var ErrAlreadyExists = errors.New("database already exists")

// Database bundles the buffer pool and catalog of one open database.
type Database struct {
	BufferPool *pager.BufferPool
	Catalog    *catalog.Catalog
	DBData     string
	DBName     string
}

// Close flushes and closes every relation file belonging to the database.
func (d *Database) Close() error {
	return d.BufferPool.Close()
}

// InitDatabase creates a new database directory under dbData named dbName,
// then bootstraps its catalog (pg_class and pg_attribute, each describing
// itself and the other). Returns ErrAlreadyExists if the directory is
// already present.
func InitDatabase(dbData, dbName string, bufferPoolCapacity int) (*Database, error) {
	dir := filepath.Join(dbData, dbName)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, dbName)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	var cat *catalog.Catalog
	bp := pager.NewBufferPool(bufferPoolCapacity, func(oid uint32) (string, error) {
		if cat == nil {
			// Bootstrap opens pg_class and pg_attribute before it returns
			// the catalog, so their paths are resolved here directly.
			switch oid {
			case catalog.PgClassOid:
				return filepath.Join(dir, "pg_class"), nil
			case catalog.PgAttributeOid:
				return filepath.Join(dir, "pg_attribute"), nil
			}
			return "", fmt.Errorf("%w: oid %d", catalog.ErrRelationNotFound, oid)
		}
		return cat.ResolvePath(oid)
	})

	var err error
	cat, err = catalog.Bootstrap(bp, dbData, dbName)
	if err != nil {
		return nil, fmt.Errorf("bootstrap catalog: %w", err)
	}

	return &Database{BufferPool: bp, Catalog: cat, DBData: dbData, DBName: dbName}, nil
}
