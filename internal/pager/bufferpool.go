package pager

import (
	"fmt"
	"sync"
)

// frameKey identifies a cached page by the relation that owns it and its
// page number within that relation.
type frameKey struct {
	relOid uint32
	page   uint32
}

// frame is one slot in the buffer pool.
type frame struct {
	key      frameKey
	buf      []byte
	pinCount int
	dirty    bool
	refBit   bool // second-chance reference bit
}

// BufferID identifies a pinned page to its caller; callers treat it as
// opaque and pass it back to UnpinBuffer/GetPage.
type BufferID int

// PagerOpener returns the path to a relation's file on disk given its oid.
// The buffer pool uses this to lazily open a *Pager the first time a
// relation is touched.
type PagerOpener func(relOid uint32) (string, error)

// BufferPool is a pinning cache of pages shared across every relation in a
// database. Each relation's underlying Pager is owned by the pool itself,
// keyed by relation oid, and opened lazily on first access.
type BufferPool struct {
	mu       sync.Mutex
	capacity int
	frames   []*frame
	byKey    map[frameKey]int // frameKey -> index into frames
	clock    int              // clock-sweep hand

	openPath PagerOpener
	pagers   map[uint32]*Pager
}

// NewBufferPool creates a pool with room for capacity pages, resolving each
// relation's file path through openPath the first time it is touched.
func NewBufferPool(capacity int, openPath PagerOpener) *BufferPool {
	return &BufferPool{
		capacity: capacity,
		byKey:    make(map[frameKey]int),
		openPath: openPath,
		pagers:   make(map[uint32]*Pager),
	}
}

func (bp *BufferPool) pagerFor(relOid uint32) (*Pager, error) {
	if p, ok := bp.pagers[relOid]; ok {
		return p, nil
	}
	path, err := bp.openPath(relOid)
	if err != nil {
		return nil, err
	}
	p, err := Open(path)
	if err != nil {
		return nil, err
	}
	bp.pagers[relOid] = p
	return p, nil
}

// FetchBuffer pins and returns the buffer id and contents of an existing
// page belonging to relOid. If the page is not already cached it is read
// through the relation's pager.
func (bp *BufferPool) FetchBuffer(relOid uint32, page uint32) (BufferID, []byte, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	key := frameKey{relOid: relOid, page: page}
	if idx, ok := bp.byKey[key]; ok {
		f := bp.frames[idx]
		f.pinCount++
		f.refBit = true
		return BufferID(idx), f.buf, nil
	}

	pgr, err := bp.pagerFor(relOid)
	if err != nil {
		return -1, nil, err
	}
	data, err := pgr.ReadPage(page)
	if err != nil {
		return -1, nil, err
	}
	idx, err := bp.loadFrame(key, data)
	if err != nil {
		return -1, nil, err
	}
	return BufferID(idx), bp.frames[idx].buf, nil
}

// AllocBuffer allocates a brand-new page for relOid, pins it, and returns
// its buffer id, page number, and a zero-initialized buffer the caller is
// expected to InitPage.
func (bp *BufferPool) AllocBuffer(relOid uint32) (BufferID, uint32, []byte, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pgr, err := bp.pagerFor(relOid)
	if err != nil {
		return -1, 0, nil, err
	}
	page := pgr.AllocatePage()
	buf := make([]byte, PageSize)

	idx, err := bp.loadFrame(frameKey{relOid: relOid, page: page}, buf)
	if err != nil {
		return -1, 0, nil, err
	}
	bp.frames[idx].dirty = true
	return BufferID(idx), page, bp.frames[idx].buf, nil
}

// loadFrame installs data under key into a free or evicted frame slot and
// pins it once. Caller must hold bp.mu.
func (bp *BufferPool) loadFrame(key frameKey, data []byte) (int, error) {
	if len(bp.frames) < bp.capacity {
		f := &frame{key: key, buf: data, pinCount: 1, refBit: true}
		bp.frames = append(bp.frames, f)
		idx := len(bp.frames) - 1
		bp.byKey[key] = idx
		return idx, nil
	}

	idx, err := bp.evict()
	if err != nil {
		return -1, err
	}
	old := bp.frames[idx]
	delete(bp.byKey, old.key)
	bp.frames[idx] = &frame{key: key, buf: data, pinCount: 1, refBit: true}
	bp.byKey[key] = idx
	return idx, nil
}

// evict runs a clock (second-chance) sweep looking for an unpinned frame.
// Caller must hold bp.mu.
func (bp *BufferPool) evict() (int, error) {
	n := len(bp.frames)
	for i := 0; i < 2*n; i++ {
		idx := bp.clock
		bp.clock = (bp.clock + 1) % n
		f := bp.frames[idx]
		if f.pinCount > 0 {
			continue
		}
		if f.refBit {
			f.refBit = false
			continue
		}
		if f.dirty {
			if err := bp.flushFrame(f); err != nil {
				return -1, err
			}
		}
		return idx, nil
	}
	return -1, ErrBufferPoolExhausted
}

func (bp *BufferPool) flushFrame(f *frame) error {
	pgr, err := bp.pagerFor(f.key.relOid)
	if err != nil {
		return err
	}
	if err := pgr.WritePage(f.key.page, f.buf); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// PageCount returns the number of pages currently allocated for relOid,
// opening its pager if this is the first time the relation has been
// touched.
func (bp *BufferPool) PageCount(relOid uint32) (uint32, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	pgr, err := bp.pagerFor(relOid)
	if err != nil {
		return 0, err
	}
	return pgr.Size(), nil
}

// GetPage returns the buffer contents for an already-pinned buffer id.
func (bp *BufferPool) GetPage(id BufferID) []byte {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.frames[int(id)].buf
}

// MarkDirty flags a pinned buffer as modified, so it is written back on
// eviction or flush.
func (bp *BufferPool) MarkDirty(id BufferID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.frames[int(id)].dirty = true
}

// UnpinBuffer releases one pin on a buffer. dirty additionally marks the
// frame as modified; it never clears a dirty bit set by a previous pin.
func (bp *BufferPool) UnpinBuffer(id BufferID, dirty bool) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	f := bp.frames[int(id)]
	if dirty {
		f.dirty = true
	}
	if f.pinCount > 0 {
		f.pinCount--
	}
}

// FlushAllBuffers writes every dirty frame back to its relation's file. It
// does not unpin or evict any frame.
func (bp *BufferPool) FlushAllBuffers() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for _, f := range bp.frames {
		if !f.dirty {
			continue
		}
		if err := bp.flushFrame(f); err != nil {
			return fmt.Errorf("flush all buffers: %w", err)
		}
	}
	return nil
}

// Close flushes every dirty frame and then closes every relation's
// underlying pager. A flush failure is returned without closing any file,
// so data loss from a failed flush is never silent.
func (bp *BufferPool) Close() error {
	if err := bp.FlushAllBuffers(); err != nil {
		return err
	}
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for oid, pgr := range bp.pagers {
		if err := pgr.Close(); err != nil {
			return fmt.Errorf("close pager for relation %d: %w", oid, err)
		}
	}
	return nil
}
