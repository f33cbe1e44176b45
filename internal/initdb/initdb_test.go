package initdb

import (
	"errors"
	"testing"

	"github.com/Takashiidobe/tinydb/internal/access"
	"github.com/Takashiidobe/tinydb/internal/catalog"
)

func TestInitDatabaseEndToEnd(t *testing.T) {
	dbData := t.TempDir()

	db, err := InitDatabase(dbData, "shop", 16)
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}

	oid, err := db.Catalog.HeapCreate("orders", []catalog.AttributeDef{{Name: "id", Len: 4}})
	if err != nil {
		t.Fatalf("HeapCreate: %v", err)
	}

	if _, err := access.HeapInsert(db.BufferPool, oid, []byte{0x57, 0x00, 0x00, 0x00}); err != nil {
		t.Fatalf("HeapInsert: %v", err)
	}

	tuples, err := access.HeapScan(db.BufferPool, oid)
	if err != nil {
		t.Fatalf("HeapScan: %v", err)
	}
	if len(tuples) != 1 {
		t.Fatalf("scanned %d tuples, want 1", len(tuples))
	}

	got, err := db.Catalog.GetOidRelation("orders")
	if err != nil || got != oid {
		t.Fatalf("GetOidRelation(orders) = %d, %v; want %d, nil", got, err, oid)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestInitDatabaseAlreadyExists(t *testing.T) {
	dbData := t.TempDir()

	db, err := InitDatabase(dbData, "shop", 16)
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	if _, err := InitDatabase(dbData, "shop", 16); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second InitDatabase err = %v, want ErrAlreadyExists", err)
	}
}
