package main

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Takashiidobe/tinydb/internal/access"
	"github.com/Takashiidobe/tinydb/internal/catalog"
	"github.com/Takashiidobe/tinydb/internal/config"
	"github.com/Takashiidobe/tinydb/internal/initdb"
)

// Session holds the one open database a tinyheap REPL instance drives.
type Session struct {
	cfg config.Config
	db  *initdb.Database
}

// NewSession creates a session rooted at cfg's data directory. No database
// is open until a "create database" statement runs.
func NewSession(cfg config.Config) *Session {
	return &Session{cfg: cfg}
}

// Close flushes and closes the currently open database, if any.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Execute runs one parsed statement and returns rows to print (nil for
// statements that produce no result set).
func (s *Session) Execute(stmt *Statement) ([][]string, error) {
	switch {
	case stmt.CreateDatabase != nil:
		return nil, s.createDatabase(stmt.CreateDatabase)
	case stmt.CreateTable != nil:
		return nil, s.createTable(stmt.CreateTable)
	case stmt.Insert != nil:
		return nil, s.insert(stmt.Insert)
	case stmt.Select != nil:
		return s.selectAll(stmt.Select)
	default:
		return nil, fmt.Errorf("empty statement")
	}
}

func (s *Session) createDatabase(stmt *CreateDatabase) error {
	db, err := initdb.InitDatabase(s.cfg.DataDir, stmt.Name, s.cfg.BufferPoolCapacity)
	if err != nil {
		return err
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
	}
	s.db = db
	return nil
}

func (s *Session) requireDB() error {
	if s.db == nil {
		return fmt.Errorf("no database open: run create database <name> first")
	}
	return nil
}

func columnDefsOf(stmt *CreateTable) []catalog.AttributeDef {
	cols := make([]catalog.AttributeDef, len(stmt.Columns))
	for i, c := range stmt.Columns {
		if c.Type.Int {
			cols[i] = catalog.AttributeDef{Name: c.Name, Len: 4}
		} else {
			cols[i] = catalog.AttributeDef{Name: c.Name, Len: c.Type.Varchar}
		}
	}
	return cols
}

func (s *Session) createTable(stmt *CreateTable) error {
	if err := s.requireDB(); err != nil {
		return err
	}
	_, err := s.db.Catalog.HeapCreate(stmt.Name, columnDefsOf(stmt))
	return err
}

// encodeRow concatenates values in column order using each column's fixed
// attlen: 4-byte little-endian ints, or a string truncated/zero-padded to
// its declared length.
func encodeRow(cols []catalog.PgAttributeRow, values []Literal) ([]byte, error) {
	if len(cols) != len(values) {
		return nil, fmt.Errorf("expected %d values, got %d", len(cols), len(values))
	}
	var buf []byte
	for i, col := range cols {
		v := values[i]
		if col.AttLen == 4 {
			if v.Int == nil {
				return nil, fmt.Errorf("column %q expects an int", col.AttName)
			}
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(int32(*v.Int)))
			buf = append(buf, b[:]...)
			continue
		}
		if v.Str == nil {
			return nil, fmt.Errorf("column %q expects a string", col.AttName)
		}
		field := make([]byte, col.AttLen)
		copy(field, *v.Str)
		buf = append(buf, field...)
	}
	return buf, nil
}

func decodeRow(cols []catalog.PgAttributeRow, data []byte) []string {
	out := make([]string, len(cols))
	off := 0
	for i, col := range cols {
		chunk := data[off : off+col.AttLen]
		off += col.AttLen
		if col.AttLen == 4 {
			out[i] = fmt.Sprintf("%d", int32(binary.LittleEndian.Uint32(chunk)))
		} else {
			out[i] = strings.TrimRight(string(chunk), "\x00")
		}
	}
	return out
}

func (s *Session) insert(stmt *Insert) error {
	if err := s.requireDB(); err != nil {
		return err
	}
	oid, err := s.db.Catalog.GetOidRelation(stmt.Table)
	if err != nil {
		return err
	}
	cols, err := s.db.Catalog.GetAttributesFromRelation(oid)
	if err != nil {
		return err
	}
	row, err := encodeRow(cols, stmt.Values)
	if err != nil {
		return err
	}
	_, err = access.HeapInsert(s.db.BufferPool, oid, row)
	return err
}

func (s *Session) selectAll(stmt *Select) ([][]string, error) {
	if err := s.requireDB(); err != nil {
		return nil, err
	}
	oid, err := s.db.Catalog.GetOidRelation(stmt.Table)
	if err != nil {
		return nil, err
	}
	cols, err := s.db.Catalog.GetAttributesFromRelation(oid)
	if err != nil {
		return nil, err
	}
	tuples, err := access.HeapScan(s.db.BufferPool, oid)
	if err != nil {
		return nil, err
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.AttName
	}
	rows := [][]string{header}
	for _, t := range tuples {
		rows = append(rows, decodeRow(cols, t))
	}
	return rows, nil
}
