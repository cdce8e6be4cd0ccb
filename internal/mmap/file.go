package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by reads after Close.
	ErrClosed = errors.New("mmap: file is closed")
	// ErrRange is returned for a negative offset or length.
	ErrRange = errors.New("mmap: negative offset or length")
	// ErrTooLarge is returned for a file that does not fit the address space.
	ErrTooLarge = errors.New("mmap: file too large")
)

// File is a read-only mapping of a whole file.
type File struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps path and advises the kernel that it will be read front to back.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if int64(int(size)) != size {
		return nil, ErrTooLarge
	}
	if size == 0 {
		return &File{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	osSequential(data)
	return &File{data: data, unmap: unmap}, nil
}

// Len returns the file size.
func (f *File) Len() int64 { return int64(len(f.data)) }

// Bytes returns the whole mapping, or nil after Close.
func (f *File) Bytes() []byte {
	if f.closed.Load() {
		return nil
	}
	return f.data
}

// Slice returns the mapped bytes [off, off+n), cut short at the end of the
// file. It returns io.EOF when off is at or past the end.
func (f *File) Slice(off, n int64) ([]byte, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 {
		return nil, ErrRange
	}
	if off >= f.Len() {
		return nil, io.EOF
	}
	return f.data[off : off+min(n, f.Len()-off)], nil
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	b, err := f.Slice(off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	n := copy(p, b)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Prefetch asks the kernel to page in [off, off+n). It is a hint; failures
// are ignored.
func (f *File) Prefetch(off, n int64) {
	b, err := f.Slice(off, n)
	if err != nil || len(b) == 0 {
		return
	}
	page := int64(os.Getpagesize())
	start := off &^ (page - 1)
	osWillNeed(f.data[start : off+int64(len(b))])
}

// Close unmaps the file. It is idempotent; slices returned earlier must not
// be used afterwards.
func (f *File) Close() error {
	if f.closed.Swap(true) || f.data == nil {
		return nil
	}
	return f.unmap(f.data)
}
