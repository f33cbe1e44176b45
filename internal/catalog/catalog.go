// Package catalog implements the metacircular system catalog: pg_class
// describes every relation (including itself and pg_attribute), and
// pg_attribute describes every relation's columns (including its own and
// pg_class's). Both are ordinary heap relations, bootstrapped by inserting
// their own descriptive rows through the normal insert path.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Takashiidobe/tinydb/internal/access"
	"github.com/Takashiidobe/tinydb/internal/pager"
	"github.com/Takashiidobe/tinydb/internal/rel"
)

const (
	// PgClassOid is the reserved oid of the pg_class relation.
	PgClassOid uint32 = 1259

	// PgAttributeOid is the reserved oid of the pg_attribute relation.
	PgAttributeOid uint32 = 1249

	// FirstUserOid is the first oid assigned to a user-created relation.
	FirstUserOid uint32 = 16384
)

// ErrRelationNotFound is returned when a relation name or oid is unknown to
// the catalog.
var ErrRelationNotFound = errors.New("relation not found")

// AttributeDef describes one column of a relation being created: its name
// and its fixed on-disk length (in bytes, for user relations; -1 for a
// catalog row's own variable-length JSON fields).
type AttributeDef struct {
	Name string
	Len  int
}

// PgClassRow is one row of the pg_class relation.
type PgClassRow struct {
	Oid     uint32
	RelName string
}

// PgAttributeRow is one row of the pg_attribute relation.
type PgAttributeRow struct {
	AttRelOid uint32
	AttName   string
	AttNum    int
	AttLen    int
}

// Catalog is the system catalog for one database.
type Catalog struct {
	bp      *pager.BufferPool
	dbData  string
	dbName  string
	nextOid uint32

	relations map[uint32]*rel.Relation
}

// ResolvePath implements pager.PagerOpener, resolving a relation's oid to
// its file path. Every relation — catalog or user — must be registered in
// c.relations before its pager can be opened.
func (c *Catalog) ResolvePath(relOid uint32) (string, error) {
	r, ok := c.relations[relOid]
	if !ok {
		return "", fmt.Errorf("%w: oid %d", ErrRelationNotFound, relOid)
	}
	return r.Path, nil
}

func encodeRow(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode catalog row: %w", err)
	}
	return b, nil
}

func decodeRow(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode catalog row: %w", err)
	}
	return nil
}

// Bootstrap creates a fresh Catalog for database dbName rooted at dbData,
// registers pg_class and pg_attribute, and inserts their own descriptive
// rows through the ordinary heap-insert path.
func Bootstrap(bp *pager.BufferPool, dbData, dbName string) (*Catalog, error) {
	c := &Catalog{
		bp:        bp,
		dbData:    dbData,
		dbName:    dbName,
		nextOid:   FirstUserOid,
		relations: make(map[uint32]*rel.Relation),
	}
	c.relations[PgClassOid] = rel.Open(PgClassOid, dbData, dbName, "pg_class")
	c.relations[PgAttributeOid] = rel.Open(PgAttributeOid, dbData, dbName, "pg_attribute")

	pgClassCols := []AttributeDef{{Name: "oid", Len: 4}, {Name: "relname", Len: -1}}
	pgAttributeCols := []AttributeDef{
		{Name: "attrelid", Len: 4},
		{Name: "attname", Len: -1},
		{Name: "attnum", Len: 4},
		{Name: "attlen", Len: 4},
	}

	if err := c.insertClassRow(PgClassOid, "pg_class"); err != nil {
		return nil, err
	}
	if err := c.insertClassRow(PgAttributeOid, "pg_attribute"); err != nil {
		return nil, err
	}
	if err := c.insertAttributeRows(PgClassOid, pgClassCols); err != nil {
		return nil, err
	}
	if err := c.insertAttributeRows(PgAttributeOid, pgAttributeCols); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) insertClassRow(oid uint32, relName string) error {
	data, err := encodeRow(PgClassRow{Oid: oid, RelName: relName})
	if err != nil {
		return err
	}
	_, err = access.HeapInsert(c.bp, PgClassOid, data)
	return err
}

func (c *Catalog) insertAttributeRows(relOid uint32, cols []AttributeDef) error {
	for i, col := range cols {
		data, err := encodeRow(PgAttributeRow{
			AttRelOid: relOid,
			AttName:   col.Name,
			AttNum:    i,
			AttLen:    col.Len,
		})
		if err != nil {
			return err
		}
		if _, err := access.HeapInsert(c.bp, PgAttributeOid, data); err != nil {
			return err
		}
	}
	return nil
}

// HeapCreate registers a new user relation, assigns it an oid, provisions
// its file with one empty data page, and records its pg_class and
// pg_attribute rows.
func (c *Catalog) HeapCreate(relName string, cols []AttributeDef) (uint32, error) {
	oid := c.nextOid
	c.nextOid++

	c.relations[oid] = rel.Open(oid, c.dbData, c.dbName, relName)

	bid, _, buf, err := c.bp.AllocBuffer(oid)
	if err != nil {
		return 0, err
	}
	pager.InitPage(buf, pager.PageSize)
	c.bp.UnpinBuffer(bid, true)

	if err := c.insertClassRow(oid, relName); err != nil {
		return 0, err
	}
	if err := c.insertAttributeRows(oid, cols); err != nil {
		return 0, err
	}
	return oid, nil
}

// GetOidRelation returns the oid of relName by scanning pg_class.
func (c *Catalog) GetOidRelation(relName string) (uint32, error) {
	var found uint32
	var ok bool
	err := access.HeapIter(c.bp, PgClassOid, func(_ access.TupleID, data []byte) bool {
		var row PgClassRow
		if decodeRow(data, &row) != nil {
			return true
		}
		if row.RelName == relName {
			found, ok = row.Oid, true
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrRelationNotFound, relName)
	}
	return found, nil
}

// GetAttributesFromRelation returns the columns of relOid, in attnum order,
// by scanning pg_attribute.
func (c *Catalog) GetAttributesFromRelation(relOid uint32) ([]PgAttributeRow, error) {
	var attrs []PgAttributeRow
	err := access.HeapIter(c.bp, PgAttributeOid, func(_ access.TupleID, data []byte) bool {
		var row PgAttributeRow
		if decodeRow(data, &row) != nil {
			return true
		}
		if row.AttRelOid == relOid {
			attrs = append(attrs, row)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: oid %d has no attributes", ErrRelationNotFound, relOid)
	}
	for i := 0; i < len(attrs); i++ {
		for j := i + 1; j < len(attrs); j++ {
			if attrs[j].AttNum < attrs[i].AttNum {
				attrs[i], attrs[j] = attrs[j], attrs[i]
			}
		}
	}
	return attrs, nil
}

// Relation returns the descriptor registered for relOid, if any.
func (c *Catalog) Relation(relOid uint32) (*rel.Relation, bool) {
	r, ok := c.relations[relOid]
	return r, ok
}
