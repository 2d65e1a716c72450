package index

// Entry is the location of one key's most recent value: which file it lives
// in, the byte offset of the value bytes (not the record start), its size,
// and the second-precision write timestamp. This is the only metadata kept
// in memory per key — the actual value bytes live on disk and are fetched
// by seeking to ValOffset and reading ValSize bytes from FileID's data file.
type Entry struct {
	// FileID identifies which data file holds this entry's value bytes.
	FileID uint64

	// ValOffset is the byte offset within FileID's file where the value
	// bytes begin — not the start of the record, which also carries the
	// header and key bytes ahead of it.
	ValOffset uint32

	// ValSize is the length of the value in bytes, letting a read fetch the
	// exact range in one seek+read without parsing the record header again.
	ValSize uint32

	// Timestamp is the second-precision Unix time the record was written,
	// used for the store-wide expiry check. Recovery resolves last-writer-wins
	// by replay order, not by comparing timestamps.
	Timestamp uint32

	// ExpiresAt is an optional per-key deadline set by Instance.SetX. Zero
	// means "no per-key deadline", in which case the store-wide expiry
	// config applies; a nonzero deadline takes its place.
	ExpiresAt uint32
}
