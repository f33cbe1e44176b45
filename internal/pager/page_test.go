package pager

import (
	"bytes"
	"errors"
	"testing"
)

func TestInitPageEmpty(t *testing.T) {
	pg := InitPage(make([]byte, PageSize), PageSize)
	if pg.ItemCount() != 0 {
		t.Fatalf("ItemCount() = %d, want 0", pg.ItemCount())
	}
	if pg.FreeSpace() != PageSize-PageHeaderSize-ItemIdSize {
		t.Fatalf("FreeSpace() = %d, want %d", pg.FreeSpace(), PageSize-PageHeaderSize-ItemIdSize)
	}
}

func TestAddItemAndIterate(t *testing.T) {
	pg := InitPage(make([]byte, PageSize), PageSize)
	items := [][]byte{
		[]byte("first tuple"),
		[]byte("second tuple, a bit longer"),
		[]byte("third"),
	}
	for i, data := range items {
		idx, err := pg.AddItem(data)
		if err != nil {
			t.Fatalf("AddItem(%d): %v", i, err)
		}
		if idx != i {
			t.Fatalf("AddItem(%d) returned index %d", i, idx)
		}
	}

	var got [][]byte
	pg.Iterate(func(itemID int, data []byte) bool {
		cp := append([]byte(nil), data...)
		got = append(got, cp)
		return true
	})
	if len(got) != len(items) {
		t.Fatalf("Iterate yielded %d items, want %d", len(got), len(items))
	}
	for i, data := range items {
		if !bytes.Equal(got[i], data) {
			t.Fatalf("item %d = %q, want %q", i, got[i], data)
		}
	}
}

func TestAddItemPageFull(t *testing.T) {
	pg := InitPage(make([]byte, PageSize), PageSize)
	big := make([]byte, PageSize)
	if _, err := pg.AddItem(big); !errors.Is(err, ErrPageFull) {
		t.Fatalf("AddItem oversized err = %v, want ErrPageFull", err)
	}
}

func TestIterateStopsEarly(t *testing.T) {
	pg := InitPage(make([]byte, PageSize), PageSize)
	for i := 0; i < 5; i++ {
		if _, err := pg.AddItem([]byte{byte(i)}); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	seen := 0
	pg.Iterate(func(itemID int, data []byte) bool {
		seen++
		return itemID < 2
	})
	if seen != 3 {
		t.Fatalf("Iterate visited %d items, want 3 (stops after itemID==2)", seen)
	}
}
