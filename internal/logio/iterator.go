package logio

import (
	stdErrors "errors"
	"io"
	"os"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/record"
)

// Iterator sequentially decodes records from a single data file, yielding
// (key, index entry) pairs. It is used only by recovery. It stops on a
// clean end-of-file, on corruption, or on any other I/O error — in every
// case the caller keeps whatever was already yielded before the stop.
type Iterator struct {
	fileID uint64
	file   *os.File
}

// NewIterator opens fileID for read and returns an Iterator positioned at
// the start of the file.
func NewIterator(dir string, fileID uint64) (*Iterator, error) {
	f, err := record.OpenForRead(dir, record.DataFileName(fileID))
	if err != nil {
		return nil, err
	}
	return &Iterator{fileID: fileID, file: f}, nil
}

// Next decodes the next record. It returns ("", nil, io.EOF) at a clean
// end of file, or ("", nil, record.ErrCorrupt) on corruption/truncation.
func (it *Iterator) Next() (string, *index.Entry, error) {
	entry, err := record.Decode(it.file)
	if err != nil {
		if stdErrors.Is(err, io.EOF) {
			return "", nil, io.EOF
		}
		return "", nil, err
	}

	return string(entry.Key), &index.Entry{
		FileID:    it.fileID,
		ValOffset: uint32(entry.ValOffset),
		ValSize:   entry.ValSize,
		Timestamp: entry.Timestamp,
	}, nil
}

// Close releases the underlying file handle.
func (it *Iterator) Close() error {
	return it.file.Close()
}
