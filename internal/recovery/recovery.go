// Package recovery rebuilds the in-memory index from whatever data files
// already exist in a directory when a store is opened. It is run once,
// synchronously, before any read or write is accepted.
package recovery

import (
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/logio"
	"github.com/ignitekv/ignite/internal/record"
	"github.com/ignitekv/ignite/pkg/errors"
	"go.uber.org/zap"
)

// Result summarizes what recovery observed, so the engine can pick up where
// the log left off.
type Result struct {
	// MaxFileID is the highest file id found on disk, or 0 if the directory
	// held no data files. The engine must open its active file with an id
	// strictly greater than this value.
	MaxFileID uint64

	// Keys is the number of keys in the index after replay. Keys whose last
	// record is a tombstone are counted too, since replay installs
	// tombstone records like any other.
	Keys int
}

// Run discovers every data file in dir, replays them in ascending file-id
// order, and installs each record's location into idx. Later files and
// later records within a file always win over earlier ones, which is
// exactly what insertion order into idx.Put gives us for free.
func Run(dir string, idx *index.Index, log *zap.SugaredLogger) (Result, error) {
	ids, err := discoverFileIDs(dir)
	if err != nil {
		return Result{}, err
	}

	var maxID uint64
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
		if err := replay(dir, id, idx, log); err != nil {
			return Result{}, err
		}
	}

	return Result{MaxFileID: maxID, Keys: idx.Len()}, nil
}

// discoverFileIDs lists dir for files named <id>.bitcask.data, parses the
// numeric id out of each, and returns the ids sorted ascending.
func discoverFileIDs(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list data directory").
			WithPath(dir)
	}

	var ids []uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, record.DataFileExtension) {
			continue
		}
		stem := strings.TrimSuffix(name, record.DataFileExtension)
		id, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// replay decodes every record in one file in order and installs it into
// idx. A clean EOF ends the file normally. A corrupt trailing record — the
// signature of a crash mid-append — truncates replay of that file at the
// point of corruption; everything decoded before it is kept, tolerating a
// torn last write instead of failing recovery outright. Any other decode
// error stops replay of the file the same way.
func replay(dir string, fileID uint64, idx *index.Index, log *zap.SugaredLogger) error {
	it, err := logio.NewIterator(dir, fileID)
	if err != nil {
		return err
	}
	defer it.Close()

	var count int
	for {
		key, entry, err := it.Next()
		if err != nil {
			if stdErrors.Is(err, io.EOF) {
				break
			}
			if stdErrors.Is(err, record.ErrCorrupt) {
				log.Warnw("stopping replay at corrupt record",
					"fileID", fileID, "recordsRecovered", count)
				break
			}
			log.Warnw("stopping replay at unreadable record",
				"fileID", fileID, "recordsRecovered", count, "error", err)
			break
		}

		// Tombstones are replayed verbatim: the value bytes equal
		// record.TombstoneValue, so a later Get will see them and must
		// treat the key as deleted. This layer does not special-case the
		// tombstone value and remove the key outright, because a legitimate
		// 1-byte value that happens to equal 0x08 is indistinguishable from
		// one here — the read path is responsible for treating a
		// tombstone-valued entry as absent.
		idx.Put(key, entry)
		count++
	}

	log.Debugw("replayed data file", "fileID", fileID, "records", count)
	return nil
}

// DataFilePath returns the on-disk path for a recovered file id.
func DataFilePath(dir string, fileID uint64) string {
	return filepath.Join(dir, record.DataFileName(fileID))
}
