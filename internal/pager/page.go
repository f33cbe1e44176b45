package pager

import (
	"encoding/binary"
	"fmt"
)

// ───────────────────────────────────────────────────────────────────────────
// Slotted Page
// ───────────────────────────────────────────────────────────────────────────
//
// A slotted page stores variable-length tuples. The layout is:
//
//   [0..6)              PageHeader (StartFreeSpace, EndFreeSpace, PageSize)
//   [6..6+4*n)           Item-id directory, 4 bytes each, growing upward
//   ... free space ...
//   [EndFreeSpace..PageSize)  Tuple bytes, growing downward
//
// Each item id is 4 bytes:
//   [0:2]  Offset  (uint16) — byte offset of the tuple from page start
//   [2:4]  Length  (uint16) — tuple length in bytes
//
// There is no delete or update operation and therefore no tombstones: once
// written, an item id is never reused, moved, or removed.

// PageHeaderSize is the size in bytes of the fixed page header.
const PageHeaderSize = 6

// ItemIdSize is the size in bytes of one item-id directory entry.
const ItemIdSize = 4

// PageHeader is the fixed-size header at the start of every page.
type PageHeader struct {
	StartFreeSpace uint16 // byte offset just past the item-id directory
	EndFreeSpace   uint16 // byte offset where the lowest stored tuple starts; the next tuple ends here
	PageSize       uint16 // total page size in bytes
}

// MarshalHeader writes h into the first PageHeaderSize bytes of buf.
func MarshalHeader(h PageHeader, buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:], h.StartFreeSpace)
	binary.LittleEndian.PutUint16(buf[2:], h.EndFreeSpace)
	binary.LittleEndian.PutUint16(buf[4:], h.PageSize)
}

// UnmarshalHeader reads a PageHeader from the first PageHeaderSize bytes of buf.
func UnmarshalHeader(buf []byte) PageHeader {
	return PageHeader{
		StartFreeSpace: binary.LittleEndian.Uint16(buf[0:]),
		EndFreeSpace:   binary.LittleEndian.Uint16(buf[2:]),
		PageSize:       binary.LittleEndian.Uint16(buf[4:]),
	}
}

// ItemId describes one slot in the item-id directory.
type ItemId struct {
	Offset uint16
	Length uint16
}

// Page wraps a raw page buffer and provides tuple-level operations.
type Page struct {
	buf []byte
}

// WrapPage wraps an existing page buffer without modifying it.
func WrapPage(buf []byte) *Page {
	return &Page{buf: buf}
}

// InitPage initialises buf as an empty page of the given size.
func InitPage(buf []byte, pageSize int) *Page {
	h := PageHeader{
		StartFreeSpace: PageHeaderSize,
		EndFreeSpace:   uint16(pageSize),
		PageSize:       uint16(pageSize),
	}
	MarshalHeader(h, buf)
	return WrapPage(buf)
}

func (p *Page) header() PageHeader {
	return UnmarshalHeader(p.buf)
}

func (p *Page) setHeader(h PageHeader) {
	MarshalHeader(h, p.buf)
}

// ItemCount returns the number of item ids in the directory.
func (p *Page) ItemCount() int {
	h := p.header()
	return (int(h.StartFreeSpace) - PageHeaderSize) / ItemIdSize
}

// FreeSpace returns the number of bytes available for a new tuple, after
// accounting for the new item-id entry it would need.
func (p *Page) FreeSpace() int {
	h := p.header()
	free := int(h.EndFreeSpace) - int(h.StartFreeSpace) - ItemIdSize
	if free < 0 {
		return 0
	}
	return free
}

// GetItemId returns the item id at index i.
func (p *Page) GetItemId(i int) ItemId {
	off := PageHeaderSize + i*ItemIdSize
	return ItemId{
		Offset: binary.LittleEndian.Uint16(p.buf[off:]),
		Length: binary.LittleEndian.Uint16(p.buf[off+2:]),
	}
}

func (p *Page) setItemId(i int, id ItemId) {
	off := PageHeaderSize + i*ItemIdSize
	binary.LittleEndian.PutUint16(p.buf[off:], id.Offset)
	binary.LittleEndian.PutUint16(p.buf[off+2:], id.Length)
}

// GetItem returns the raw bytes of the tuple referenced by item id i.
func (p *Page) GetItem(i int) []byte {
	id := p.GetItemId(i)
	return p.buf[id.Offset : id.Offset+id.Length]
}

// AddItem appends a new tuple to the page, returning its item-id index.
// Returns ErrPageFull if there is insufficient free space.
func (p *Page) AddItem(data []byte) (int, error) {
	if len(data) == 0 {
		return -1, fmt.Errorf("%w: zero-length payload", ErrPageFull)
	}
	if p.FreeSpace() < len(data) {
		return -1, fmt.Errorf("%w: need %d bytes, have %d", ErrPageFull, len(data), p.FreeSpace())
	}
	h := p.header()
	newEnd := int(h.EndFreeSpace) - len(data)
	copy(p.buf[newEnd:], data)

	idx := p.ItemCount()
	p.setItemId(idx, ItemId{Offset: uint16(newEnd), Length: uint16(len(data))})

	h.EndFreeSpace = uint16(newEnd)
	h.StartFreeSpace += ItemIdSize
	p.setHeader(h)
	return idx, nil
}

// Iterate calls fn for every tuple on the page, in item-id order, stopping
// early if fn returns false.
func (p *Page) Iterate(fn func(itemID int, data []byte) bool) {
	n := p.ItemCount()
	for i := 0; i < n; i++ {
		if !fn(i, p.GetItem(i)) {
			return
		}
	}
}

// Bytes returns the underlying page buffer.
func (p *Page) Bytes() []byte { return p.buf }
