package pager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempPagerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "rel.tdb")
}

func TestOpenNewPager(t *testing.T) {
	p, err := Open(tempPagerPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()
	if p.Size() != 0 {
		t.Fatalf("fresh pager size = %d, want 0", p.Size())
	}
}

func TestOpenExistingDatabaseFile(t *testing.T) {
	path := tempPagerPath(t)
	p1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	page := p1.AllocatePage()
	buf := InitPage(make([]byte, PageSize), PageSize)
	if err := p1.WritePage(page, buf.Bytes()); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if err := p1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()
	if p2.Size() != 1 {
		t.Fatalf("reopened size = %d, want 1", p2.Size())
	}
}

func TestFirstPageDoesNotOverrideHeader(t *testing.T) {
	p, err := Open(tempPagerPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	page := p.AllocatePage()
	buf := InitPage(make([]byte, PageSize), PageSize)
	if err := p.WritePage(page, buf.Bytes()); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	fi, err := p.file.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() < HeaderSize+PageSize {
		t.Fatalf("file size %d too small to hold header + one page", fi.Size())
	}

	hdrBuf := make([]byte, HeaderSize)
	if _, err := p.file.ReadAt(hdrBuf, 0); err != nil {
		t.Fatalf("read header: %v", err)
	}
	if _, err := deserializeHeader(hdrBuf); err != nil {
		t.Fatalf("header was overwritten by first page: %v", err)
	}
}

func TestWriteReadPages(t *testing.T) {
	p, err := Open(tempPagerPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	var pages []uint32
	for i := 0; i < 3; i++ {
		pn := p.AllocatePage()
		buf := InitPage(make([]byte, PageSize), PageSize)
		if _, err := buf.AddItem([]byte{byte(i), byte(i + 1)}); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if err := p.WritePage(pn, buf.Bytes()); err != nil {
			t.Fatalf("WritePage(%d): %v", pn, err)
		}
		pages = append(pages, pn)
	}

	for i, pn := range pages {
		raw, err := p.ReadPage(pn)
		if err != nil {
			t.Fatalf("ReadPage(%d): %v", pn, err)
		}
		pg := WrapPage(raw)
		got := pg.GetItem(0)
		want := []byte{byte(i), byte(i + 1)}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("page %d item mismatch: got %v want %v", pn, got, want)
		}
	}
}

func TestReadInvalidPage(t *testing.T) {
	p, err := Open(tempPagerPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if _, err := p.ReadPage(0); !errors.Is(err, ErrIncorrectPageNumber) {
		t.Fatalf("ReadPage(0) err = %v, want ErrIncorrectPageNumber", err)
	}
	if _, err := p.ReadPage(1); !errors.Is(err, ErrIncorrectPageNumber) {
		t.Fatalf("ReadPage(1) on empty pager err = %v, want ErrIncorrectPageNumber", err)
	}

	pn := p.AllocatePage()
	if _, err := p.ReadPage(pn); err != nil {
		t.Fatalf("ReadPage(%d) on just-allocated page: %v", pn, err)
	}
	if _, err := p.ReadPage(pn + 1); !errors.Is(err, ErrIncorrectPageNumber) {
		t.Fatalf("ReadPage(%d) err = %v, want ErrIncorrectPageNumber", pn+1, err)
	}
}

func TestReadCorruptedHeader(t *testing.T) {
	path := tempPagerPath(t)
	if err := os.WriteFile(path, make([]byte, HeaderSize), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrCorruptedFile) {
		t.Fatalf("Open corrupted file err = %v, want ErrCorruptedFile", err)
	}
}

func TestPagerSize(t *testing.T) {
	p, err := Open(tempPagerPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	for i := uint32(1); i <= 5; i++ {
		pn := p.AllocatePage()
		buf := InitPage(make([]byte, PageSize), PageSize)
		if err := p.WritePage(pn, buf.Bytes()); err != nil {
			t.Fatalf("WritePage: %v", err)
		}
		if p.Size() != i {
			t.Fatalf("Size() = %d, want %d", p.Size(), i)
		}
	}
}
