// Package rel describes relations (tables) as plain, pager-independent
// handles. A Relation names a relation file on disk; the buffer pool that
// actually reads and writes its pages is owned one layer up, indexed by oid.
package rel

import "path/filepath"

// Relation is a descriptor for one relation file on disk.
type Relation struct {
	Oid     uint32
	DBName  string
	RelName string
	Path    string
}

// Open computes a Relation descriptor for relName inside database dbName,
// whose files live under dbData.
func Open(oid uint32, dbData, dbName, relName string) *Relation {
	return &Relation{
		Oid:     oid,
		DBName:  dbName,
		RelName: relName,
		Path:    filepath.Join(dbData, dbName, relName),
	}
}
