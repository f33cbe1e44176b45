package access

import "github.com/Takashiidobe/tinydb/internal/pager"

// TupleID identifies one tuple within a relation: the page it lives on and
// its item-id index on that page.
type TupleID struct {
	Page   uint32
	ItemID int
}

// HeapInsert stores data as a new tuple in relOid, reusing free space on an
// existing page before allocating a new one.
func HeapInsert(bp *pager.BufferPool, relOid uint32, data []byte) (TupleID, error) {
	if bid, page, ok, err := findPageWithFreeSpace(bp, relOid, len(data)); err != nil {
		return TupleID{}, err
	} else if ok {
		pg := pager.WrapPage(bp.GetPage(bid))
		itemID, aerr := pg.AddItem(data)
		bp.UnpinBuffer(bid, true)
		if aerr != nil {
			return TupleID{}, aerr
		}
		return TupleID{Page: page, ItemID: itemID}, nil
	}

	bid, page, buf, err := bp.AllocBuffer(relOid)
	if err != nil {
		return TupleID{}, err
	}
	pg := pager.InitPage(buf, pager.PageSize)
	itemID, err := pg.AddItem(data)
	bp.UnpinBuffer(bid, true)
	if err != nil {
		return TupleID{}, err
	}
	return TupleID{Page: page, ItemID: itemID}, nil
}

// HeapIter visits every live tuple of relOid, in page and item-id order,
// stopping early if fn returns false. Every page the relation owns is
// scanned — there is no single-page shortcut.
func HeapIter(bp *pager.BufferPool, relOid uint32, fn func(id TupleID, data []byte) bool) error {
	total, err := bp.PageCount(relOid)
	if err != nil {
		return err
	}
	for pn := uint32(1); pn <= total; pn++ {
		bid, data, err := bp.FetchBuffer(relOid, pn)
		if err != nil {
			return err
		}
		pg := pager.WrapPage(data)
		cont := true
		pg.Iterate(func(itemID int, tuple []byte) bool {
			cont = fn(TupleID{Page: pn, ItemID: itemID}, tuple)
			return cont
		})
		bp.UnpinBuffer(bid, false)
		if !cont {
			return nil
		}
	}
	return nil
}

// HeapScan collects every live tuple of relOid into memory, in page and
// item-id order.
func HeapScan(bp *pager.BufferPool, relOid uint32) ([][]byte, error) {
	var tuples [][]byte
	err := HeapIter(bp, relOid, func(_ TupleID, data []byte) bool {
		cp := append([]byte(nil), data...)
		tuples = append(tuples, cp)
		return true
	})
	if err != nil {
		return nil, err
	}
	return tuples, nil
}
