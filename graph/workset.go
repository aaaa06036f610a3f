package graph

import (
	"sort"

	"strata.lol/store"
)

// record is a decoded role record held while a batch mutates it.
type record struct {
	key     by
	ns      []Neighborship
	present bo
	dirty   bo
	deleted bo
}

// workset caches the records touched by one call so that each is read and
// written back once, however many edges of the batch land on it.
type workset struct {
	rd      store.Reader
	col     store.Collection
	records map[st]*record
}

func newWorkset(rd store.Reader, col store.Collection) *workset {
	return &workset{rd: rd, col: col, records: make(map[st]*record)}
}

func (w *workset) load(c cx, v int64, r Role) (rec *record, err er) {
	k := vertexKey(v, r)
	var ok bo
	if rec, ok = w.records[st(k)]; ok {
		return
	}
	rec = &record{key: k}
	var val by
	if val, rec.present, err = w.rd.Get(c, w.col, k, store.Default); chk.E(err) {
		return
	}
	if rec.ns, err = decode(val); chk.E(err) {
		return
	}
	w.records[st(k)] = rec
	return
}

// create makes rec present, an absent record is stored empty.
func (rec *record) create() {
	if !rec.present || rec.deleted {
		rec.present, rec.deleted, rec.dirty = true, false, true
	}
}

func (rec *record) insert(n Neighborship) {
	rec.create()
	var added bo
	if rec.ns, added = insert(rec.ns, n); added {
		rec.dirty = true
	}
}

func (rec *record) remove(n Neighborship) {
	var removed bo
	if rec.ns, removed = remove(rec.ns, n); removed {
		rec.dirty = true
	}
}

func (rec *record) drop() {
	if rec.present {
		rec.ns, rec.present, rec.deleted, rec.dirty = nil, false, true, true
	}
}

// flush writes back every changed record in key order.
func (w *workset) flush(c cx, wr store.Writer) (err er) {
	var dirty []*record
	for _, rec := range w.records {
		if rec.dirty {
			dirty = append(dirty, rec)
		}
	}
	sort.Slice(dirty, func(i, j no) bo { return st(dirty[i].key) < st(dirty[j].key) })
	for _, rec := range dirty {
		if rec.deleted {
			if err = wr.Delete(c, w.col, rec.key); chk.E(err) {
				return
			}
		} else if err = wr.Put(c, w.col, rec.key, encode(rec.ns)); chk.E(err) {
			return
		}
		rec.dirty = false
	}
	log.T.F("wrote back %d adjacency records", len(dirty))
	return
}
