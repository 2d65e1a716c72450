// Package record implements the on-disk record codec for the Bitcask log:
// a fixed 16-byte header (crc, timestamp, key size, value size) followed by
// the raw key and value bytes, all integers big-endian. This is the only
// place the wire format is read or written; every other package operates on
// the decoded fields.
package record

import (
	"encoding/binary"
	stdErrors "errors"
	"hash/crc32"
	"io"

	"github.com/ignitekv/ignite/pkg/errors"
)

const (
	crcSize = 4
	tsSize  = 4
	kszSize = 4
	vszSize = 4

	// HeaderSize is the fixed width of every record's header, before the key
	// and value bytes.
	HeaderSize = crcSize + tsSize + kszSize + vszSize
)

// TombstoneValue is the in-band marker written as a record's value to
// signal deletion. It collides with any legitimate one-byte value equal to
// 0x08 by design, trading that ambiguity for a format with no separate
// out-of-band deletion flag.
var TombstoneValue = []byte{0x08}

// ErrCorrupt is returned by Decode when a record's CRC does not match its
// contents, or when the reader is truncated mid-record after at least one
// header byte was consumed. Both cases stop a scan of the containing file
// without treating already-decoded records as invalid.
var ErrCorrupt = stdErrors.New("record: corrupt or truncated entry")

// Entry is the metadata Decode recovers about one record, minus the file id
// (the caller knows which file it is reading and attaches that itself).
type Entry struct {
	Key       []byte
	ValOffset int64
	ValSize   uint32
	Timestamp uint32
}

// Encode serializes key, val, and ts into one contiguous record: a 16-byte
// header followed by the key bytes and value bytes. The CRC32 (IEEE
// polynomial) covers every byte after the CRC field itself.
func Encode(key, val []byte, ts uint32) ([]byte, error) {
	total := HeaderSize + len(key) + len(val)
	if total < 0 || int64(len(key)) > 0xFFFFFFFF || int64(len(val)) > 0xFFFFFFFF {
		return nil, errors.NewStorageError(
			nil, errors.ErrorCodeEncodingOverflow, "key or value exceeds 32-bit length field",
		).WithDetail("keyLen", len(key)).WithDetail("valLen", len(val))
	}

	buf := make([]byte, total)
	binary.BigEndian.PutUint32(buf[crcOffset():], 0) // placeholder, overwritten below
	binary.BigEndian.PutUint32(buf[tsOffset():], ts)
	binary.BigEndian.PutUint32(buf[kszOffset():], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[vszOffset():], uint32(len(val)))
	copy(buf[HeaderSize:], key)
	copy(buf[HeaderSize+len(key):], val)

	checksum := crc32.ChecksumIEEE(buf[crcSize:])
	binary.BigEndian.PutUint32(buf[crcOffset():], checksum)

	return buf, nil
}

// Decode reads one record from r. It returns io.EOF when the reader is
// exhausted at a clean record boundary (zero header bytes read). Any CRC
// mismatch, or a short read after at least one byte was consumed, returns
// ErrCorrupt — the caller should stop scanning this file but keep whatever
// was decoded before this call.
func Decode(r io.Reader) (*Entry, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, header)
	if n == 0 && err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, ErrCorrupt
	}

	crc := binary.BigEndian.Uint32(header[crcOffset():tsOffset()])
	ts := binary.BigEndian.Uint32(header[tsOffset():kszOffset()])
	ksz := binary.BigEndian.Uint32(header[kszOffset():vszOffset()])
	vsz := binary.BigEndian.Uint32(header[vszOffset():HeaderSize])

	key := make([]byte, ksz)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, ErrCorrupt
	}

	valOffset, err := currentOffset(r)
	if err != nil {
		return nil, err
	}

	val := make([]byte, vsz)
	if _, err := io.ReadFull(r, val); err != nil {
		return nil, ErrCorrupt
	}

	check := crc32.NewIEEE()
	check.Write(header[tsOffset():])
	check.Write(key)
	check.Write(val)
	if check.Sum32() != crc {
		return nil, ErrCorrupt
	}

	return &Entry{Key: key, ValOffset: valOffset, ValSize: vsz, Timestamp: ts}, nil
}

func crcOffset() int { return 0 }
func tsOffset() int  { return crcSize }
func kszOffset() int { return crcSize + tsSize }
func vszOffset() int { return crcSize + tsSize + kszSize }

// seeker is implemented by any reader Decode can ask for its current byte
// position, which is how it computes val_offset without requiring the
// caller to track bytes consumed so far.
type seeker interface {
	Seek(offset int64, whence int) (int64, error)
}

func currentOffset(r io.Reader) (int64, error) {
	s, ok := r.(seeker)
	if !ok {
		return 0, stdErrors.New("record: reader does not support Seek, cannot compute val_offset")
	}
	return s.Seek(0, io.SeekCurrent)
}
