package profile

import "sync/atomic"

// Handle publishes an immutable database snapshot to concurrent readers.
// The gesture engine reads the snapshot on the input event path, where a
// mutex held across an edit would stall pointer event delivery. Writers
// replace the whole snapshot; readers never observe a partial edit.
type Handle struct {
	current atomic.Pointer[DB]
}

// NewHandle wraps an initial database snapshot.
func NewHandle(db DB) *Handle {
	h := &Handle{}
	h.current.Store(&db)
	return h
}

// Snapshot returns the current database. The returned value must be treated
// as read-only; mutate via Replace or Update.
func (h *Handle) Snapshot() *DB {
	return h.current.Load()
}

// Replace publishes a new snapshot.
func (h *Handle) Replace(db DB) {
	h.current.Store(&db)
}

// Update applies fn to a deep copy of the current snapshot and publishes the
// result. Concurrent Updates may lose edits; callers serialize their own
// writes (the server holds a single writer goroutine).
func (h *Handle) Update(fn func(*DB)) {
	next := h.Snapshot().clone()
	fn(&next)
	h.Replace(next)
}

// clone deep-copies the database so a snapshot can be edited without the
// published copy observing the changes.
func (db *DB) clone() DB {
	out := DB{
		SchemaVersion: db.SchemaVersion,
		Gestures:      append([]string(nil), db.Gestures...),
		Profiles:      make([]Profile, len(db.Profiles)),
		Bindings:      make(map[string]string, len(db.Bindings)),
	}
	for i, p := range db.Profiles {
		cp := p
		cp.Rules = append([]Rule(nil), p.Rules...)
		cp.Bindings = append([]Binding(nil), p.Bindings...)
		out.Profiles[i] = cp
	}
	for k, v := range db.Bindings {
		out.Bindings[k] = v
	}
	return out
}
