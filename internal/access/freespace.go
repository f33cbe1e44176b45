// Package access implements the heap access method: inserting and
// scanning tuples stored in the slotted pages of a relation, through the
// shared buffer pool.
package access

import "github.com/Takashiidobe/tinydb/internal/pager"

// findPageWithFreeSpace scans relOid's existing pages in ascending order
// looking for the first one with enough room for a tuple of size need. It
// returns the pinned buffer id and page number of that page, or ok=false if
// no existing page fits and a new one must be allocated.
//
// This is a first-fit scan, not the original implementation's shortcut of
// only ever checking page 1: every page the relation has must be
// considered before giving up and growing the relation.
func findPageWithFreeSpace(bp *pager.BufferPool, relOid uint32, need int) (id pager.BufferID, page uint32, ok bool, err error) {
	total, err := bp.PageCount(relOid)
	if err != nil {
		return 0, 0, false, err
	}
	for pn := uint32(1); pn <= total; pn++ {
		bid, data, ferr := bp.FetchBuffer(relOid, pn)
		if ferr != nil {
			return 0, 0, false, ferr
		}
		pg := pager.WrapPage(data)
		if pg.FreeSpace() >= need {
			return bid, pn, true, nil
		}
		bp.UnpinBuffer(bid, false)
	}
	return 0, 0, false, nil
}
