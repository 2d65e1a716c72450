package record

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ignitekv/ignite/pkg/errors"
)

// DataFileExtension is the fixed suffix recovery's directory scan filters on.
const DataFileExtension = ".bitcask.data"

// DataFileName returns the canonical filename for a given file id:
// "<file_id>.bitcask.data".
func DataFileName(fileID uint64) string {
	return fmt.Sprintf("%d%s", fileID, DataFileExtension)
}

// OpenForAppend opens name under dir for append-only writes, creating the
// file if it does not exist.
func OpenForAppend(dir, name string) (*os.File, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, name)
	}
	return f, nil
}

// OpenForRead opens name under dir as read-only. It fails if the file does
// not exist.
func OpenForRead(dir, name string) (*os.File, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, name)
	}
	return f, nil
}
