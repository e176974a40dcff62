// Package mmap maps feed archives into memory for random access reading.
package mmap

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reader is a read-only memory-mapped file. It implements io.ReaderAt so a
// zip archive can be read without copying it onto the heap.
type Reader struct {
	file     *os.File
	data     []byte
	fileSize int64
	pageSize int

	bytesRead int64
	mu        sync.RWMutex
}

var _ io.ReaderAt = (*Reader)(nil)

// NewReader maps filename into memory.
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fileSize := stat.Size()
	if fileSize == 0 {
		file.Close()
		return nil, fmt.Errorf("file is empty")
	}

	data, err := mmap(int(file.Fd()), 0, int(fileSize), ProtRead, MapShared)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}

	// Zip directories are read from the end, entries from the start.
	_ = madvise(data, MadvWillneed)

	return &Reader{
		file:     file,
		data:     data,
		fileSize: fileSize,
		pageSize: os.Getpagesize(),
	}, nil
}

// Size returns the mapped length.
func (r *Reader) Size() int64 { return r.fileSize }

// ReadAt copies len(p) bytes starting at off.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.data == nil {
		return 0, os.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= r.fileSize {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	r.bytesRead += int64(n)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error

	if r.data != nil {
		err = munmap(r.data)
		r.data = nil
	}

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	return err
}

// Stats returns the bytes served and the number of pages they span.
func (r *Reader) Stats() (bytesRead, pages int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bytesRead, (r.fileSize + int64(r.pageSize) - 1) / int64(r.pageSize)
}
