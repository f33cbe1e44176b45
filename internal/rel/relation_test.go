package rel

import (
	"path/filepath"
	"testing"
)

func TestOpenComputesPath(t *testing.T) {
	r := Open(16384, "/var/lib/tinydb", "mydb", "widgets")
	want := filepath.Join("/var/lib/tinydb", "mydb", "widgets")
	if r.Path != want {
		t.Fatalf("Path = %q, want %q", r.Path, want)
	}
	if r.Oid != 16384 || r.DBName != "mydb" || r.RelName != "widgets" {
		t.Fatalf("unexpected relation fields: %+v", r)
	}
}
