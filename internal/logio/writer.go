package logio

import (
	"os"
	"time"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/record"
	"github.com/ignitekv/ignite/pkg/errors"
	"go.uber.org/zap"
)

// Config holds the parameters a Writer needs beyond the directory it writes
// into: the active-file rollover threshold and whether every append must be
// fdatasync'd before the call returns.
type Config struct {
	Dir         string
	MaxFileSize uint32
	SyncOnPut   bool
}

// Writer owns the active data file: its file id, the append-only handle,
// the write position, and a reference to the shared key directory it keeps
// up to date on every successful append. Only the write path touches a
// Writer — no synchronization is needed beyond what the caller already
// provides by serializing Put/Delete calls.
type Writer struct {
	cfg      Config
	log      *zap.SugaredLogger
	idx      *index.Index
	file     *os.File
	fileID   uint64
	position int64
}

// New derives a fresh file id from the current epoch second — bumped above
// minFileID if necessary — opens that file for append, and returns a Writer
// positioned at offset 0. minFileID is the highest file id recovery (or a
// prior open) observed on disk; passing 0 is correct for a brand-new
// directory. The active file is always a new file, never one recovery
// already replayed.
func New(cfg Config, idx *index.Index, log *zap.SugaredLogger, minFileID uint64) (*Writer, error) {
	fileID := uint64(time.Now().Unix())
	if fileID <= minFileID {
		fileID = minFileID + 1
	}

	f, err := record.OpenForAppend(cfg.Dir, record.DataFileName(fileID))
	if err != nil {
		return nil, err
	}
	return &Writer{cfg: cfg, log: log, idx: idx, file: f, fileID: fileID}, nil
}

// FileID returns the id of the file currently being appended to.
func (w *Writer) FileID() uint64 {
	return w.fileID
}

// Put encodes and appends one record, then installs its location in the key
// directory. expiresAt is an optional absolute Unix-second deadline (0 means
// no per-key deadline); it is recorded only in the index, never on disk — a
// process restart forgets it, unlike the store's uniform default expiry,
// which the engine instead recomputes from the persisted write timestamp on
// every read.
// If the active file now exceeds the configured threshold, it rolls over to
// a new active file before returning.
func (w *Writer) Put(key, val []byte, expiresAt uint32) error {
	ts := uint32(time.Now().Unix())
	if err := w.write(key, val, ts, expiresAt); err != nil {
		return err
	}

	if w.position > int64(w.cfg.MaxFileSize) {
		if err := w.roll(); err != nil {
			return err
		}
	}

	return nil
}

// Delete appends a tombstone record for key (a record whose value is the
// single byte 0x08) and removes the key from the index. A crash between the
// append and the index removal is safe: recovery will simply observe the
// tombstone record like any other entry.
func (w *Writer) Delete(key []byte) error {
	ts := uint32(time.Now().Unix())
	if err := w.write(key, record.TombstoneValue, ts, 0); err != nil {
		return err
	}
	w.idx.Delete(string(key))
	return nil
}

func (w *Writer) write(key, val []byte, ts, expiresAt uint32) error {
	entryBytes, err := record.Encode(key, val, ts)
	if err != nil {
		return err
	}

	entryStart := w.position
	if _, err := w.file.Write(entryBytes); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record").
			WithSegmentID(int(w.fileID)).WithOffset(int(entryStart))
	}
	w.position += int64(len(entryBytes))

	if w.cfg.SyncOnPut {
		if err := w.file.Sync(); err != nil {
			return errors.ClassifySyncError(err, record.DataFileName(w.fileID), w.cfg.Dir, int(w.position))
		}
	}

	w.idx.Put(string(key), &index.Entry{
		FileID:    w.fileID,
		ValOffset: uint32(entryStart + int64(record.HeaderSize) + int64(len(key))),
		ValSize:   uint32(len(val)),
		Timestamp: ts,
		ExpiresAt: expiresAt,
	})

	w.log.Debugw("appended record", "fileID", w.fileID, "offset", entryStart, "keyLen", len(key), "valLen", len(val))

	return nil
}

// roll closes out the current active file (fsyncing it first) and opens a
// new one with a strictly greater file id. Two rolls within the same epoch
// second would otherwise collide; bumping by one guarantees strict ordering.
func (w *Writer) roll() error {
	if err := w.file.Sync(); err != nil {
		return errors.ClassifySyncError(err, record.DataFileName(w.fileID), w.cfg.Dir, int(w.position))
	}

	newID := uint64(time.Now().Unix())
	if newID <= w.fileID {
		newID = w.fileID + 1
	}

	f, err := record.OpenForAppend(w.cfg.Dir, record.DataFileName(newID))
	if err != nil {
		return err
	}

	if err := w.file.Close(); err != nil {
		f.Close()
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close rolled data file").
			WithSegmentID(int(w.fileID)).WithOffset(int(w.position))
	}

	w.log.Infow("rolling active file", "oldFileID", w.fileID, "newFileID", newID, "size", w.position)

	w.file = f
	w.fileID = newID
	w.position = 0

	return nil
}

// Close flushes and syncs the active file. Errors during close are reported
// to the caller, which is expected to log them and not treat them as fatal
// — callers that can't log may safely ignore the returned error.
func (w *Writer) Close() error {
	if err := w.file.Sync(); err != nil {
		return errors.ClassifySyncError(err, record.DataFileName(w.fileID), w.cfg.Dir, int(w.position))
	}
	return w.file.Close()
}
