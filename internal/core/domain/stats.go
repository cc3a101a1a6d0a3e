package domain

// StoreStats is a debug snapshot of the backing store.
type StoreStats struct {
	// Keys is the total number of keys in the database.
	Keys int64

	// SampleKeys is a handful of keys as returned by a single scan.
	SampleKeys []string

	// RandomKey is an arbitrary key, empty if the database is empty.
	RandomKey string

	// RandomDocument is the hash stored at RandomKey, if it is a hash.
	RandomDocument map[string]string
}
