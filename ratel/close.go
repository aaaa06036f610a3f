package ratel

// Close releases the collection sequence and closes the database, flattening
// the LSM tree first if Flatten is set.
func (r *T) Close() (err er) {
	if r.DB.IsClosed() {
		return
	}
	if !r.InMemory {
		chk.E(r.DB.Sync())
	}
	log.I.F("closing database %s", r.Path())
	if r.Flatten {
		if err = r.DB.Flatten(4); chk.E(err) {
			return
		}
		log.D.F("database flattened")
	}
	if err = r.seq.Release(); chk.E(err) {
		return
	}
	log.D.F("sequence released")
	if err = r.DB.Close(); chk.E(err) {
		return
	}
	log.I.F("database closed")
	return
}

// Sync flushes the write ahead log to disk.
func (r *T) Sync() (err er) {
	if r.InMemory {
		return
	}
	return r.DB.Sync()
}
