// Package kv is a thin facade over an ordered, byte-keyed store: point
// get, streamed ascending range scan, and an atomically committed batch
// of writes. It is the only thing the engine depends on for persistence.
package kv

// WriteKind selects between a Put and a Delete in a Batch.
type WriteKind int

const (
	Put WriteKind = iota
	Delete
)

// Write is one member of an atomic Batch.
type Write struct {
	Kind  WriteKind
	Key   string
	Value string
}

// Store is the minimal ordered key-value backend the engine requires.
type Store interface {
	// Get returns the value at key, or ok=false if absent.
	Get(key string) (value string, ok bool, err error)
	// Scan streams every key in the half-open range [gte, lt) in
	// ascending key order to fn. fn returning an error stops the scan
	// early and that error is returned from Scan.
	Scan(gte, lt string, fn func(key, value string) error) error
	// Batch commits every write atomically. An empty batch is a no-op
	// and must not open a transaction.
	Batch(writes []Write) error
	// Close releases resources held by the store. Idempotent.
	Close() error
}

// emptyValueSentinel stands in for the empty string when writing to a
// backend that cannot represent it, and is translated back to "" on
// every read path.
const emptyValueSentinel = " "

// EncodeValue prepares a logical value for storage.
func EncodeValue(v string) string {
	if v == "" {
		return emptyValueSentinel
	}
	return v
}

// DecodeValue restores a value read from storage to its logical form.
func DecodeValue(v string) string {
	if v == emptyValueSentinel {
		return ""
	}
	return v
}
