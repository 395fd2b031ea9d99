package repositories

// HandleStore persists the session resumption handle across
// connections and process restarts.
type HandleStore interface {
	// Get returns the stored handle. ok is false when no handle is
	// stored or the backend cannot be read.
	Get() (handle string, ok bool)

	// Set stores the handle. An empty handle clears the store.
	Set(handle string) error
}
