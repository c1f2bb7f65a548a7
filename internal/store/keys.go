package store

import "sync"

// keyPool recycles byte slices used to build badger keys, keeping the read
// and write paths allocation-free. 256 bytes covers every key shape we
// produce: prefix, optional "idx:<name>:", and a NanoID suffix.
var keyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 256)
	},
}

// buildKey assembles prefix+suffix in a pooled buffer. The slice is only
// valid until releaseKey is called, and callers MUST release it:
//
//	key := buildKey("user:", userID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// buildIndexKey assembles a secondary index key ("<prefix>idx:<name>:<value>")
// in a pooled buffer. Same release contract as buildKey.
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// releaseKey returns a buffer to the pool. The slice must not be used after.
func releaseKey(key []byte) {
	// Do not pool buffers that grew past the expected key size.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
